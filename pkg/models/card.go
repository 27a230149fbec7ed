package models

import "time"

// Card represents a term/definition flashcard under spaced repetition
type Card struct {
	ID             string     `json:"id" db:"id"`
	DeckID         string     `json:"deck_id" db:"deck_id"`
	Term           string     `json:"term" db:"term"`
	Definition     string     `json:"definition" db:"definition"`
	Category       string     `json:"category" db:"category"`
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`     // SM-2 EF parameter, never below 1.3
	IntervalDays   int        `json:"interval_days" db:"interval_days"` // Days until the next review
	Repetitions    int        `json:"repetitions" db:"repetitions"`     // Consecutive successful reviews
	DueAt          time.Time  `json:"due_at" db:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the card is due for review at the given time
func (c *Card) IsDue(now time.Time) bool {
	return !c.DueAt.After(now)
}

// IsNew reports whether the card has never been reviewed
func (c *Card) IsNew() bool {
	return c.LastReviewedAt == nil
}

// Deck groups cards for study
type Deck struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	CardCount   int       `json:"card_count" db:"card_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
