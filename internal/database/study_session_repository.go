package database

import (
	"fmt"

	"github.com/example/nurseprep/pkg/models"
)

// StudySessionRepository handles the archive of completed study sessions
type StudySessionRepository struct{}

// NewStudySessionRepository creates a new repository instance
func NewStudySessionRepository() *StudySessionRepository {
	return &StudySessionRepository{}
}

// ArchiveStudySession persists the record of a completed study session
func (r *StudySessionRepository) ArchiveStudySession(rec *models.StudySessionRecord) error {
	_, err := DB.Exec(`
		INSERT INTO study_sessions (
			id, deck_id, mode, cards_studied, cards_known,
			duration_sec, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.ID,
		rec.DeckID,
		rec.Mode,
		rec.CardsStudied,
		rec.CardsKnown,
		rec.DurationSec,
		rec.StartedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to archive study session %s: %v", ErrStoreUnavailable, rec.ID, err)
	}
	return nil
}

// RecentSessions returns the most recently completed study sessions
func (r *StudySessionRepository) RecentSessions(limit int) ([]models.StudySessionRecord, error) {
	var records []models.StudySessionRecord
	err := DB.Select(&records, "SELECT * FROM study_sessions ORDER BY completed_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get recent study sessions: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}
