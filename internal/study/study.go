package study

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/nurseprep/internal/session"
	"github.com/example/nurseprep/internal/spaced_repetition"
	"github.com/example/nurseprep/pkg/models"
)

// Mode selects how the session's card list is built
type Mode string

const (
	// ModeSpaced serves due cards in scheduler order
	ModeSpaced Mode = "spaced"
	// ModeShuffledAll serves the whole deck in random order
	ModeShuffledAll Mode = "shuffled_all"
)

// CardStore is the durable card and review-log store. SaveReview must
// commit the card mutation and the event append atomically.
type CardStore interface {
	CardsByDeck(deckID string) ([]models.Card, error)
	CardByID(id string) (*models.Card, error)
	SaveReview(card *models.Card, event *models.ReviewEvent) error
}

// Archiver persists the record of a completed study session
type Archiver interface {
	ArchiveStudySession(rec *models.StudySessionRecord) error
}

// Session is the live state of one flashcard study session
type Session struct {
	ID        string
	DeckID    string
	Mode      Mode
	CardIDs   []string
	Position  int
	Reviewed  int
	Known     int
	DueCount  int
	StartedAt time.Time
}

// SessionID implements session.Session
func (s *Session) SessionID() string {
	return s.ID
}

func (s *Session) hasCard(cardID string) bool {
	for _, id := range s.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

// Engine runs flashcard study sessions on top of the SM-2 scheduler
type Engine struct {
	store     *session.Store
	cards     CardStore
	scheduler *spaced_repetition.SM2
	archive   Archiver
}

// NewEngine creates a study engine
func NewEngine(store *session.Store, cards CardStore, scheduler *spaced_repetition.SM2, archive Archiver) *Engine {
	return &Engine{
		store:     store,
		cards:     cards,
		scheduler: scheduler,
		archive:   archive,
	}
}

// StartInfo is the client-facing view of a started study session
type StartInfo struct {
	SessionID     string
	Cards         []models.Card
	DueCardsCount int
	SessionType   Mode
}

// Start builds the session card list and registers the session. A deck
// with nothing to study yields an empty card list, not an error.
func (e *Engine) Start(deckID string, mode Mode, maxCards int) (*StartInfo, error) {
	deck, err := e.cards.CardsByDeck(deckID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dueCount := 0
	for _, c := range deck {
		if !c.IsNew() && c.IsDue(now) {
			dueCount++
		}
	}

	var cards []models.Card
	switch mode {
	case ModeShuffledAll:
		cards = append([]models.Card(nil), deck...)
		rnd := rand.New(rand.NewSource(now.UnixNano()))
		rnd.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		if maxCards > 0 && len(cards) > maxCards {
			cards = cards[:maxCards]
		}
	default:
		cards = e.scheduler.SelectDue(deck, maxCards, now)
	}

	sess := &Session{
		ID:        uuid.New().String(),
		DeckID:    deckID,
		Mode:      mode,
		DueCount:  dueCount,
		StartedAt: now,
	}
	for _, c := range cards {
		sess.CardIDs = append(sess.CardIDs, c.ID)
	}
	e.store.Create(sess)

	return &StartInfo{
		SessionID:     sess.ID,
		Cards:         cards,
		DueCardsCount: dueCount,
		SessionType:   mode,
	}, nil
}

// ReviewInfo reports the updated scheduling state after one review
type ReviewInfo struct {
	Card      models.Card
	Remaining int
	Completed bool
}

// Review applies one recall-quality signal to a card in the session.
// The card mutation and review-event append commit in one transaction;
// if that write fails the session is untouched and the call is safe to
// retry with the same event.
func (e *Engine) Review(sessionID, cardID string, quality spaced_repetition.QualityResponse, responseTimeMs int) (*ReviewInfo, error) {
	var info *ReviewInfo
	err := e.store.With(sessionID, func(v session.Session) error {
		s := v.(*Session)
		if !s.hasCard(cardID) {
			return fmt.Errorf("%w: %s", spaced_repetition.ErrUnknownCard, cardID)
		}

		card, err := e.cards.CardByID(cardID)
		if err != nil {
			return err
		}

		now := time.Now()
		updated, err := e.scheduler.Review(*card, quality, now)
		if err != nil {
			return err
		}

		event := spaced_repetition.NewReviewEvent(uuid.New().String(), cardID, quality, responseTimeMs, now)
		if err := e.cards.SaveReview(&updated, &event); err != nil {
			return err
		}

		s.Reviewed++
		if quality >= e.scheduler.PassThreshold {
			s.Known++
		}
		if s.Position < len(s.CardIDs)-1 {
			s.Position++
		}

		completed := s.Reviewed >= len(s.CardIDs)
		if completed {
			e.finish(s, now)
		}

		info = &ReviewInfo{
			Card:      updated,
			Remaining: len(s.CardIDs) - s.Reviewed,
			Completed: completed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if info.Completed {
		e.store.Retire(sessionID)
	}
	return info, nil
}

// ExpireSession archives a study session that is being evicted for
// idleness. Called by the store sweep with the session lock held.
func (e *Engine) ExpireSession(s *Session) {
	e.finish(s, time.Now())
}

// finish writes the completed-session archive row. Failure is logged by
// the archiver path upstream; the session is retired regardless.
func (e *Engine) finish(s *Session, now time.Time) {
	if e.archive == nil {
		return
	}
	rec := &models.StudySessionRecord{
		ID:           s.ID,
		DeckID:       s.DeckID,
		Mode:         string(s.Mode),
		CardsStudied: s.Reviewed,
		CardsKnown:   s.Known,
		DurationSec:  int(now.Sub(s.StartedAt).Seconds()),
		StartedAt:    s.StartedAt,
		CompletedAt:  now,
	}
	if err := e.archive.ArchiveStudySession(rec); err != nil {
		// Archival is best effort; the review log already holds the facts
		log.Printf("study: archive session %s: %v", s.ID, err)
	}
}
