package database

import (
	"fmt"

	"github.com/example/nurseprep/pkg/models"
)

// CardRepository handles database operations for cards and the
// append-only review-event log
type CardRepository struct{}

// NewCardRepository creates a new repository instance
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

// Decks returns all decks with their card counts
func (r *CardRepository) Decks() ([]models.Deck, error) {
	var decks []models.Deck
	err := DB.Select(&decks, `
		SELECT d.id, d.name, d.description, d.category, d.created_at,
			(SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
		FROM decks d ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get decks: %v", ErrStoreUnavailable, err)
	}
	return decks, nil
}

// CardsByDeck returns all cards belonging to a deck
func (r *CardRepository) CardsByDeck(deckID string) ([]models.Card, error) {
	var cards []models.Card
	err := DB.Select(&cards, "SELECT * FROM cards WHERE deck_id = $1 ORDER BY created_at", deckID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get cards for deck %s: %v", ErrStoreUnavailable, deckID, err)
	}
	return cards, nil
}

// CardByID returns a single card
func (r *CardRepository) CardByID(id string) (*models.Card, error) {
	var card models.Card
	err := DB.Get(&card, "SELECT * FROM cards WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get card %s: %v", ErrStoreUnavailable, id, err)
	}
	return &card, nil
}

// Create inserts a new card
func (r *CardRepository) Create(card *models.Card) error {
	_, err := DB.Exec(`
		INSERT INTO cards (
			id, deck_id, term, definition, category,
			ease_factor, interval_days, repetitions, due_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		card.ID,
		card.DeckID,
		card.Term,
		card.Definition,
		card.Category,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.DueAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create card: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SaveReview commits the updated card state and its review event in one
// transaction. Either both land or neither does, so a retried review is
// never half-applied.
func (r *CardRepository) SaveReview(card *models.Card, event *models.ReviewEvent) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin review transaction: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE cards SET
			ease_factor = $1,
			interval_days = $2,
			repetitions = $3,
			due_at = $4,
			last_reviewed_at = $5,
			updated_at = $6
		WHERE id = $7
	`,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.DueAt,
		card.LastReviewedAt,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update card %s: %v", ErrStoreUnavailable, card.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO review_events (id, card_id, quality, response_time_ms, reviewed_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		event.ID,
		event.CardID,
		event.Quality,
		event.ResponseTimeMs,
		event.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to append review event for card %s: %v", ErrStoreUnavailable, card.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit review for card %s: %v", ErrStoreUnavailable, card.ID, err)
	}
	return nil
}

// ReviewEventsByCard returns the audit log for one card, oldest first
func (r *CardRepository) ReviewEventsByCard(cardID string) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	err := DB.Select(&events, "SELECT * FROM review_events WHERE card_id = $1 ORDER BY reviewed_at", cardID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get review events for card %s: %v", ErrStoreUnavailable, cardID, err)
	}
	return events, nil
}
