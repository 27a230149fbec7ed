package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/nurseprep/pkg/models"
)

// Sentinel errors for the scheduler. Check with errors.Is.
var (
	ErrInvalidQuality = errors.New("spaced_repetition: quality outside 0-5")
	ErrUnknownCard    = errors.New("spaced_repetition: card not in deck")
)

// QualityResponse represents the quality of recall in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// IsValid reports whether q is within the 0-5 scale
func (q QualityResponse) IsValid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

const (
	// MinEaseFactor is the floor for the easiness factor
	MinEaseFactor = 1.3
	// InitialEaseFactor is assigned to newly created cards
	InitialEaseFactor = 2.5
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Quality at or above this value counts as a successful recall
	PassThreshold QualityResponse
	// Maximum repetition interval in days
	MaxInterval int
}

// NewSM2 creates a scheduler with the default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: QualityCorrectDifficult,
		MaxInterval:   365,
	}
}

// Review applies one recall-quality signal to a card and returns the
// updated copy. The input card is not mutated; persisting the returned
// card together with its ReviewEvent is the caller's job.
//
// Quality below 3 is a lapse: repetitions reset to zero and the card
// comes back tomorrow, ease factor untouched. Quality 3 and above grows
// the interval 1 -> 6 -> round(previous * EF) and adjusts the ease
// factor, which never drops below 1.3.
func (sm *SM2) Review(card models.Card, quality QualityResponse, now time.Time) (models.Card, error) {
	if !quality.IsValid() {
		return card, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}

	if quality >= sm.PassThreshold {
		card.Repetitions++

		switch {
		case card.Repetitions == 1:
			card.IntervalDays = 1
		case card.Repetitions == 2:
			card.IntervalDays = 6
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
		}
		if card.IntervalDays > sm.MaxInterval {
			card.IntervalDays = sm.MaxInterval
		}

		q := float64(quality)
		ef := card.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
		if ef < MinEaseFactor {
			ef = MinEaseFactor
		}
		card.EaseFactor = ef
	} else {
		// Lapse: interval and streak reset, ease factor unchanged
		card.Repetitions = 0
		card.IntervalDays = 1
	}

	card.DueAt = now.AddDate(0, 0, card.IntervalDays)
	reviewed := now
	card.LastReviewedAt = &reviewed
	card.UpdatedAt = now

	return card, nil
}

// NewReviewEvent builds the audit-log record for a single review
func NewReviewEvent(id, cardID string, quality QualityResponse, responseTimeMs int, now time.Time) models.ReviewEvent {
	return models.ReviewEvent{
		ID:             id,
		CardID:         cardID,
		Quality:        int(quality),
		ResponseTimeMs: responseTimeMs,
		ReviewedAt:     now,
	}
}

// SelectDue returns up to limit cards ordered for review. Due cards come
// first, most overdue first, with ascending ease factor breaking ties so
// the hardest cards surface early. When fewer than limit cards are due,
// never-reviewed cards backfill the remainder. An empty deck yields an
// empty slice, not an error.
func (sm *SM2) SelectDue(cards []models.Card, limit int, now time.Time) []models.Card {
	if limit <= 0 {
		return []models.Card{}
	}

	var due, fresh []models.Card
	for _, c := range cards {
		switch {
		case !c.IsNew() && c.IsDue(now):
			due = append(due, c)
		case c.IsNew():
			fresh = append(fresh, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		oi := now.Sub(due[i].DueAt)
		oj := now.Sub(due[j].DueAt)
		if oi != oj {
			return oi > oj
		}
		return due[i].EaseFactor < due[j].EaseFactor
	})

	selected := due
	if len(selected) < limit {
		selected = append(selected, fresh...)
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}
	if selected == nil {
		selected = []models.Card{}
	}
	return selected
}

// IsMastered determines if a card is considered "mastered": at least
// five successful reviews in a row and an interval of a month or more.
func (sm *SM2) IsMastered(card *models.Card) bool {
	return card.Repetitions >= 5 && card.IntervalDays >= 30
}
