package database

import (
	"fmt"

	"github.com/example/nurseprep/pkg/models"
)

// AttemptRepository handles database operations for quiz attempts
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// RecordAttempt persists a completed quiz attempt. The insert keys on
// the session id, so recording the same attempt twice fails rather than
// duplicating history.
func (r *AttemptRepository) RecordAttempt(attempt *models.QuizAttempt) error {
	_, err := DB.Exec(`
		INSERT INTO quiz_attempts (
			id, area_id, quiz_type, score_percent, correct_count,
			total_questions, passed, auto_submit, time_taken_sec,
			started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		attempt.ID,
		attempt.AreaID,
		attempt.QuizType,
		attempt.ScorePercent,
		attempt.CorrectCount,
		attempt.TotalQuestions,
		attempt.Passed,
		attempt.AutoSubmit,
		attempt.TimeTakenSec,
		attempt.StartedAt,
		attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to record quiz attempt %s: %v", ErrStoreUnavailable, attempt.ID, err)
	}
	return nil
}

// RecentAttempts returns the most recent completed attempts, newest first
func (r *AttemptRepository) RecentAttempts(limit int) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := DB.Select(&attempts, "SELECT * FROM quiz_attempts ORDER BY completed_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get recent attempts: %v", ErrStoreUnavailable, err)
	}
	return attempts, nil
}

// Stats summarizes a user's quiz history
type Stats struct {
	TotalQuizzes int     `db:"total_quizzes"`
	AverageScore float64 `db:"average_score"`
}

// OverallStats returns the attempt count and average score
func (r *AttemptRepository) OverallStats() (*Stats, error) {
	var stats Stats
	err := DB.Get(&stats, `
		SELECT COUNT(*) AS total_quizzes,
			COALESCE(AVG(score_percent), 0) AS average_score
		FROM quiz_attempts
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get stats: %v", ErrStoreUnavailable, err)
	}
	return &stats, nil
}
