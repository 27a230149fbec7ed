package database

import (
	"fmt"

	"github.com/example/nurseprep/pkg/models"
)

// QuestionRepository handles database operations for the question bank
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

type optionRow struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
	Position   int    `db:"position"`
}

// QuestionsByArea returns all questions for a study area with their
// options in authored order
func (r *QuestionRepository) QuestionsByArea(areaID string) ([]models.Question, error) {
	var questions []models.Question
	err := DB.Select(&questions, "SELECT * FROM questions WHERE area_id = $1", areaID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get questions for area %s: %v", ErrStoreUnavailable, areaID, err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	var rows []optionRow
	err = DB.Select(&rows, `
		SELECT o.* FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.area_id = $1
		ORDER BY o.question_id, o.position
	`, areaID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get options for area %s: %v", ErrStoreUnavailable, areaID, err)
	}

	byQuestion := make(map[string][]models.QuestionOption)
	for _, row := range rows {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], models.QuestionOption{
			ID:        row.ID,
			Text:      row.Text,
			IsCorrect: row.IsCorrect,
		})
	}
	for i := range questions {
		questions[i].Options = byQuestion[questions[i].ID]
	}
	return questions, nil
}

// Areas returns all study areas with their question counts
func (r *QuestionRepository) Areas() ([]models.StudyArea, error) {
	var areas []models.StudyArea
	err := DB.Select(&areas, `
		SELECT a.id, a.name, a.description,
			(SELECT COUNT(*) FROM questions q WHERE q.area_id = a.id) AS question_count
		FROM study_areas a ORDER BY a.name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get study areas: %v", ErrStoreUnavailable, err)
	}
	return areas, nil
}

// Create inserts a question and its options
func (r *QuestionRepository) Create(q *models.Question) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin question insert: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO questions (id, area_id, prompt, explanation, difficulty, category, cognitive_level, time_budget_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, q.ID, q.AreaID, q.Prompt, q.Explanation, q.Difficulty, q.Category, q.CognitiveLevel, q.TimeBudgetSec)
	if err != nil {
		return fmt.Errorf("%w: failed to insert question: %v", ErrStoreUnavailable, err)
	}

	for i, opt := range q.Options {
		_, err = tx.Exec(`
			INSERT INTO question_options (id, question_id, text, is_correct, position)
			VALUES ($1, $2, $3, $4, $5)
		`, opt.ID, q.ID, opt.Text, opt.IsCorrect, i)
		if err != nil {
			return fmt.Errorf("%w: failed to insert option: %v", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit question insert: %v", ErrStoreUnavailable, err)
	}
	return nil
}
