package study

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/nurseprep/internal/session"
	"github.com/example/nurseprep/internal/spaced_repetition"
	"github.com/example/nurseprep/pkg/models"
)

type fakeCardStore struct {
	mu     sync.Mutex
	cards  map[string]models.Card
	events []models.ReviewEvent
	fail   error
}

func newFakeCardStore(cards ...models.Card) *fakeCardStore {
	s := &fakeCardStore{cards: make(map[string]models.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (f *fakeCardStore) CardsByDeck(deckID string) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Card
	for _, c := range f.cards {
		if c.DeckID == deckID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardStore) CardByID(id string) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %s not found", id)
	}
	return &c, nil
}

func (f *fakeCardStore) SaveReview(card *models.Card, event *models.ReviewEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.cards[card.ID] = *card
	f.events = append(f.events, *event)
	return nil
}

type fakeArchiver struct {
	mu      sync.Mutex
	records []models.StudySessionRecord
}

func (f *fakeArchiver) ArchiveStudySession(rec *models.StudySessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return nil
}

var studyNow = time.Now()

func dueCard(id string, daysOverdue int) models.Card {
	due := studyNow.AddDate(0, 0, -daysOverdue)
	reviewed := due.AddDate(0, 0, -1)
	return models.Card{
		ID:             id,
		DeckID:         "deck-1",
		Term:           "term " + id,
		Definition:     "definition " + id,
		EaseFactor:     spaced_repetition.InitialEaseFactor,
		IntervalDays:   1,
		Repetitions:    1,
		DueAt:          due,
		LastReviewedAt: &reviewed,
	}
}

func freshCard(id string) models.Card {
	return models.Card{
		ID:         id,
		DeckID:     "deck-1",
		Term:       "term " + id,
		Definition: "definition " + id,
		EaseFactor: spaced_repetition.InitialEaseFactor,
	}
}

func newTestEngine(cards *fakeCardStore) (*Engine, *fakeArchiver, *session.Store) {
	archive := &fakeArchiver{}
	store := session.NewStore(time.Hour, nil)
	engine := NewEngine(store, cards, spaced_repetition.NewSM2(), archive)
	return engine, archive, store
}

func TestStartSpacedSelectsDueCards(t *testing.T) {
	cards := newFakeCardStore(
		dueCard("overdue-5", 5),
		dueCard("overdue-2", 2),
		freshCard("fresh"),
	)
	engine, _, _ := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(info.Cards))
	}
	if info.Cards[0].ID != "overdue-5" || info.Cards[1].ID != "overdue-2" {
		t.Errorf("expected overdue cards most-overdue first, got %s then %s",
			info.Cards[0].ID, info.Cards[1].ID)
	}
	if info.DueCardsCount != 2 {
		t.Errorf("expected due count 2, got %d", info.DueCardsCount)
	}
}

func TestStartEmptyDeck(t *testing.T) {
	engine, _, _ := newTestEngine(newFakeCardStore())

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("an empty deck is not an error: %v", err)
	}
	if len(info.Cards) != 0 {
		t.Errorf("expected no cards, got %d", len(info.Cards))
	}
}

func TestStartShuffledAllCapsCards(t *testing.T) {
	store := newFakeCardStore(
		dueCard("c1", 1),
		dueCard("c2", 1),
		freshCard("c3"),
		freshCard("c4"),
	)
	engine, _, _ := newTestEngine(store)

	info, err := engine.Start("deck-1", ModeShuffledAll, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Cards) != 3 {
		t.Errorf("expected the card list capped at 3, got %d", len(info.Cards))
	}
	if info.SessionType != ModeShuffledAll {
		t.Errorf("expected session type %s, got %s", ModeShuffledAll, info.SessionType)
	}
}

func TestReviewUpdatesCardAndLog(t *testing.T) {
	cards := newFakeCardStore(dueCard("c1", 3))
	engine, _, _ := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	review, err := engine.Review(info.SessionID, "c1", spaced_repetition.QualityCorrectHesitation, 2500)
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	if review.Card.Repetitions != 2 {
		t.Errorf("expected repetitions 2, got %d", review.Card.Repetitions)
	}
	if review.Card.IntervalDays != 6 {
		t.Errorf("expected second successful interval of 6, got %d", review.Card.IntervalDays)
	}

	cards.mu.Lock()
	defer cards.mu.Unlock()
	if len(cards.events) != 1 {
		t.Fatalf("expected 1 review event, got %d", len(cards.events))
	}
	if cards.events[0].Quality != 4 || cards.events[0].ResponseTimeMs != 2500 {
		t.Errorf("unexpected event: %+v", cards.events[0])
	}
	if cards.cards["c1"].Repetitions != 2 {
		t.Error("card mutation did not persist")
	}
}

func TestReviewUnknownCard(t *testing.T) {
	cards := newFakeCardStore(dueCard("c1", 1))
	engine, _, _ := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = engine.Review(info.SessionID, "not-in-session", spaced_repetition.QualityPerfect, 0)
	if !errors.Is(err, spaced_repetition.ErrUnknownCard) {
		t.Errorf("expected ErrUnknownCard, got %v", err)
	}
}

func TestReviewInvalidQualityLeavesStateUntouched(t *testing.T) {
	cards := newFakeCardStore(dueCard("c1", 1))
	engine, _, _ := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = engine.Review(info.SessionID, "c1", spaced_repetition.QualityResponse(9), 0)
	if !errors.Is(err, spaced_repetition.ErrInvalidQuality) {
		t.Fatalf("expected ErrInvalidQuality, got %v", err)
	}

	cards.mu.Lock()
	defer cards.mu.Unlock()
	if len(cards.events) != 0 {
		t.Error("rejected review must not append to the log")
	}
	if cards.cards["c1"].Repetitions != 1 {
		t.Error("rejected review must not mutate the card")
	}
}

func TestReviewStoreFailureIsRetryable(t *testing.T) {
	cards := newFakeCardStore(dueCard("c1", 1))
	engine, _, _ := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	cards.fail = errors.New("store down")
	if _, err := engine.Review(info.SessionID, "c1", spaced_repetition.QualityPerfect, 0); err == nil {
		t.Fatal("expected the store failure to surface")
	}

	cards.fail = nil
	review, err := engine.Review(info.SessionID, "c1", spaced_repetition.QualityPerfect, 0)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if review.Card.Repetitions != 2 {
		t.Errorf("expected the retry to commit once, got repetitions %d", review.Card.Repetitions)
	}

	cards.mu.Lock()
	defer cards.mu.Unlock()
	if len(cards.events) != 1 {
		t.Errorf("expected exactly one committed event, got %d", len(cards.events))
	}
}

func TestSessionCompletionArchivesAndRetires(t *testing.T) {
	cards := newFakeCardStore(dueCard("c1", 2), dueCard("c2", 1))
	engine, archive, store := newTestEngine(cards)

	info, err := engine.Start("deck-1", ModeSpaced, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := engine.Review(info.SessionID, info.Cards[0].ID, spaced_repetition.QualityPerfect, 0)
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if first.Completed {
		t.Fatal("session should not complete with a card remaining")
	}

	second, err := engine.Review(info.SessionID, info.Cards[1].ID, spaced_repetition.QualityIncorrect, 0)
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if !second.Completed {
		t.Fatal("expected the session to complete")
	}

	if store.Len() != 0 {
		t.Errorf("expected the completed session retired, store holds %d", store.Len())
	}

	archive.mu.Lock()
	defer archive.mu.Unlock()
	if len(archive.records) != 1 {
		t.Fatalf("expected 1 archived session, got %d", len(archive.records))
	}
	rec := archive.records[0]
	if rec.CardsStudied != 2 {
		t.Errorf("expected 2 cards studied, got %d", rec.CardsStudied)
	}
	if rec.CardsKnown != 1 {
		t.Errorf("expected 1 card known (quality >= 3), got %d", rec.CardsKnown)
	}

	_, err = engine.Review(info.SessionID, "c1", spaced_repetition.QualityPerfect, 0)
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after completion, got %v", err)
	}
}
