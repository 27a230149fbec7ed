package spaced_repetition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/example/nurseprep/pkg/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newCard(id string, ef float64) models.Card {
	return models.Card{
		ID:         id,
		DeckID:     "deck-1",
		Term:       "term",
		Definition: "definition",
		EaseFactor: ef,
	}
}

func reviewedCard(id string, ef float64, repetitions, intervalDays int, dueAt time.Time) models.Card {
	c := newCard(id, ef)
	c.Repetitions = repetitions
	c.IntervalDays = intervalDays
	c.DueAt = dueAt
	reviewed := dueAt.AddDate(0, 0, -intervalDays)
	c.LastReviewedAt = &reviewed
	return c
}

func TestReviewInvalidQuality(t *testing.T) {
	sm := NewSM2()
	card := newCard("c1", InitialEaseFactor)

	for _, q := range []QualityResponse{-1, 6, 42} {
		updated, err := sm.Review(card, q, testNow)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality %d: expected ErrInvalidQuality, got %v", q, err)
		}
		if updated != card {
			t.Errorf("quality %d: card mutated on rejected review", q)
		}
	}
}

func TestReviewLapseResets(t *testing.T) {
	sm := NewSM2()

	for _, q := range []QualityResponse{QualityBlackout, QualityIncorrect, QualityIncorrectFamiliar} {
		t.Run(q.name(), func(t *testing.T) {
			card := reviewedCard("c1", 2.1, 4, 30, testNow.AddDate(0, 0, -3))

			updated, err := sm.Review(card, q, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Repetitions != 0 {
				t.Errorf("expected repetitions reset to 0, got %d", updated.Repetitions)
			}
			if updated.IntervalDays != 1 {
				t.Errorf("expected interval reset to 1, got %d", updated.IntervalDays)
			}
			if updated.EaseFactor != 2.1 {
				t.Errorf("expected ease factor unchanged on lapse, got %f", updated.EaseFactor)
			}
			if !updated.DueAt.Equal(testNow.AddDate(0, 0, 1)) {
				t.Errorf("expected due tomorrow, got %v", updated.DueAt)
			}
		})
	}
}

func (q QualityResponse) name() string {
	return map[QualityResponse]string{
		QualityBlackout:          "blackout",
		QualityIncorrect:         "incorrect",
		QualityIncorrectFamiliar: "incorrect_familiar",
	}[q]
}

// A fixed stream of quality-4 reviews from a fresh card must follow the
// canonical SM-2 interval growth: 1, 6, round(6*EF), round(prev*EF).
func TestReviewSuccessSequence(t *testing.T) {
	sm := NewSM2()
	card := newCard("c1", InitialEaseFactor)

	// Quality 4 leaves the ease factor at exactly 2.5:
	// EF' = EF + (0.1 - 1*(0.08 + 1*0.02)) = EF
	wantIntervals := []int{1, 6, 15, 38}

	now := testNow
	for i, want := range wantIntervals {
		updated, err := sm.Review(card, QualityCorrectHesitation, now)
		if err != nil {
			t.Fatalf("review %d: unexpected error: %v", i+1, err)
		}
		if updated.Repetitions != i+1 {
			t.Errorf("review %d: expected repetitions %d, got %d", i+1, i+1, updated.Repetitions)
		}
		if updated.IntervalDays != want {
			t.Errorf("review %d: expected interval %d, got %d", i+1, want, updated.IntervalDays)
		}
		if math.Abs(updated.EaseFactor-2.5) > 1e-9 {
			t.Errorf("review %d: expected ease factor 2.5, got %f", i+1, updated.EaseFactor)
		}
		if !updated.DueAt.Equal(now.AddDate(0, 0, want)) {
			t.Errorf("review %d: expected due %v, got %v", i+1, now.AddDate(0, 0, want), updated.DueAt)
		}
		card = updated
		now = updated.DueAt
	}
}

func TestReviewEaseFactorAdjustment(t *testing.T) {
	sm := NewSM2()

	t.Run("quality 3 lowers the ease factor", func(t *testing.T) {
		card := newCard("c1", 2.5)
		updated, err := sm.Review(card, QualityCorrectDifficult, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// EF' = 2.5 + (0.1 - 2*(0.08 + 2*0.02)) = 2.36
		if math.Abs(updated.EaseFactor-2.36) > 1e-9 {
			t.Errorf("expected ease factor 2.36, got %f", updated.EaseFactor)
		}
	})

	t.Run("quality 5 raises the ease factor", func(t *testing.T) {
		card := newCard("c1", 2.5)
		updated, err := sm.Review(card, QualityPerfect, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(updated.EaseFactor-2.6) > 1e-9 {
			t.Errorf("expected ease factor 2.6, got %f", updated.EaseFactor)
		}
	})

	t.Run("ease factor never drops below the floor", func(t *testing.T) {
		card := newCard("c1", MinEaseFactor)
		for i := 0; i < 5; i++ {
			var err error
			card, err = sm.Review(card, QualityCorrectDifficult, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if card.EaseFactor < MinEaseFactor {
			t.Errorf("ease factor %f fell below floor %f", card.EaseFactor, MinEaseFactor)
		}
	})
}

func TestReviewCapsInterval(t *testing.T) {
	sm := NewSM2()
	card := reviewedCard("c1", 2.5, 10, 300, testNow)

	updated, err := sm.Review(card, QualityCorrectHesitation, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IntervalDays != sm.MaxInterval {
		t.Errorf("expected interval capped at %d, got %d", sm.MaxInterval, updated.IntervalDays)
	}
}

func TestSelectDueOrdering(t *testing.T) {
	sm := NewSM2()

	// Two overdue cards (5 and 2 days) and one never reviewed
	deck := []models.Card{
		reviewedCard("overdue-2", 2.5, 2, 6, testNow.AddDate(0, 0, -2)),
		newCard("fresh", InitialEaseFactor),
		reviewedCard("overdue-5", 2.5, 2, 6, testNow.AddDate(0, 0, -5)),
	}

	selected := sm.SelectDue(deck, 2, testNow)
	if len(selected) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(selected))
	}
	if selected[0].ID != "overdue-5" || selected[1].ID != "overdue-2" {
		t.Errorf("expected most-overdue first, got %s then %s", selected[0].ID, selected[1].ID)
	}
}

func TestSelectDueTieBreaksOnEase(t *testing.T) {
	sm := NewSM2()
	due := testNow.AddDate(0, 0, -3)

	deck := []models.Card{
		reviewedCard("easy-card", 2.8, 2, 6, due),
		reviewedCard("hard-card", 1.5, 2, 6, due),
	}

	selected := sm.SelectDue(deck, 2, testNow)
	if len(selected) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(selected))
	}
	if selected[0].ID != "hard-card" {
		t.Errorf("expected the harder card first on a due-date tie, got %s", selected[0].ID)
	}
}

func TestSelectDueBackfillsWithNewCards(t *testing.T) {
	sm := NewSM2()

	deck := []models.Card{
		reviewedCard("overdue", 2.5, 1, 1, testNow.AddDate(0, 0, -1)),
		newCard("fresh-1", InitialEaseFactor),
		newCard("fresh-2", InitialEaseFactor),
	}

	selected := sm.SelectDue(deck, 3, testNow)
	if len(selected) != 3 {
		t.Fatalf("expected backfill to 3 cards, got %d", len(selected))
	}
	if selected[0].ID != "overdue" {
		t.Errorf("expected the due card first, got %s", selected[0].ID)
	}
}

func TestSelectDueRespectsLimit(t *testing.T) {
	sm := NewSM2()

	var deck []models.Card
	for i := 0; i < 10; i++ {
		deck = append(deck, reviewedCard("c", 2.5, 1, 1, testNow.AddDate(0, 0, -1)))
	}

	selected := sm.SelectDue(deck, 4, testNow)
	if len(selected) != 4 {
		t.Errorf("expected at most 4 cards, got %d", len(selected))
	}
	for _, c := range selected {
		if c.DueAt.After(testNow) {
			t.Errorf("card %s not due was selected while due cards fill the limit", c.ID)
		}
	}
}

func TestSelectDueEmptyDeck(t *testing.T) {
	sm := NewSM2()

	selected := sm.SelectDue(nil, 5, testNow)
	if selected == nil || len(selected) != 0 {
		t.Errorf("expected an empty slice, got %v", selected)
	}

	// A card scheduled for the future is neither due nor new
	deck := []models.Card{
		reviewedCard("future", 2.5, 3, 10, testNow.AddDate(0, 0, 10)),
	}
	selected = sm.SelectDue(deck, 5, testNow)
	if len(selected) != 0 {
		t.Errorf("expected no cards, got %d", len(selected))
	}
}

func TestIsMastered(t *testing.T) {
	sm := NewSM2()

	mastered := reviewedCard("m", 2.5, 6, 45, testNow.AddDate(0, 0, 45))
	if !sm.IsMastered(&mastered) {
		t.Error("expected card with 6 repetitions and 45-day interval to be mastered")
	}

	young := reviewedCard("y", 2.5, 2, 6, testNow)
	if sm.IsMastered(&young) {
		t.Error("expected card with 2 repetitions to not be mastered")
	}
}
