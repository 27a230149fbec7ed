package models

import "time"

// StudySessionRecord is the archived outcome of a completed flashcard
// study session. Live session state is memory-resident; only the
// completed record is durable.
type StudySessionRecord struct {
	ID            string    `json:"id" db:"id"`
	DeckID        string    `json:"deck_id" db:"deck_id"`
	Mode          string    `json:"mode" db:"mode"`
	CardsStudied  int       `json:"cards_studied" db:"cards_studied"`
	CardsKnown    int       `json:"cards_known" db:"cards_known"`
	DurationSec   int       `json:"duration_sec" db:"duration_sec"`
	StartedAt     time.Time `json:"started_at" db:"started_at"`
	CompletedAt   time.Time `json:"completed_at" db:"completed_at"`
}
