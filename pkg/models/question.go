package models

// Difficulty is a question difficulty tier
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionOption is a single selectable answer for a question
type QuestionOption struct {
	ID        string `json:"id" db:"id"`
	Text      string `json:"text" db:"text"`
	IsCorrect bool   `json:"is_correct" db:"is_correct"`
}

// Question represents a quiz question. Questions with more than one
// correct option are scored as select-all-that-apply.
type Question struct {
	ID             string           `json:"id" db:"id"`
	AreaID         string           `json:"area_id" db:"area_id"`
	Prompt         string           `json:"prompt" db:"prompt"`
	Options        []QuestionOption `json:"options"`
	Explanation    string           `json:"explanation" db:"explanation"`
	Difficulty     Difficulty       `json:"difficulty" db:"difficulty"`
	Category       string           `json:"category" db:"category"`
	CognitiveLevel string           `json:"cognitive_level" db:"cognitive_level"`
	TimeBudgetSec  int              `json:"time_budget_sec" db:"time_budget_sec"` // 0 = no per-question budget
}

// CorrectOptionIDs returns the ids of all correct options in authored order
func (q *Question) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// MultiSelect reports whether the question has more than one correct option
func (q *Question) MultiSelect() bool {
	return len(q.CorrectOptionIDs()) > 1
}

// StudyArea is a subject area grouping questions
type StudyArea struct {
	ID            string `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Description   string `json:"description" db:"description"`
	QuestionCount int    `json:"question_count" db:"question_count"`
}
