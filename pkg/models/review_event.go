package models

import "time"

// ReviewEvent is an immutable record of a single card review.
// Events are appended to the review log in the same transaction as the
// card mutation they describe, so the log can replay or audit scheduling.
type ReviewEvent struct {
	ID             string    `json:"id" db:"id"`
	CardID         string    `json:"card_id" db:"card_id"`
	Quality        int       `json:"quality" db:"quality"` // 0-5 recall quality
	ResponseTimeMs int       `json:"response_time_ms" db:"response_time_ms"`
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
