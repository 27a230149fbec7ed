package models

import "time"

// QuizType selects the session ordering and timing behavior
type QuizType string

const (
	QuizPractice        QuizType = "practice"
	QuizAdaptive        QuizType = "adaptive"
	QuizTimed           QuizType = "timed"
	QuizNCLEXSimulation QuizType = "nclex_simulation"
)

// Answer is a submitted response to one question. A later submission for
// the same question replaces the earlier one while the session is open.
type Answer struct {
	QuestionID        string   `json:"question_id"`
	SelectedOptionIDs []string `json:"selected_option_ids"`
	TimeSpentSec      int      `json:"time_spent_sec"`
}

// QuestionResult is the per-question detail in a quiz result
type QuestionResult struct {
	QuestionID        string   `json:"question_id"`
	Prompt            string   `json:"prompt"`
	SelectedOptionIDs []string `json:"selected_option_ids"`
	CorrectOptionIDs  []string `json:"correct_option_ids"`
	Correct           bool     `json:"correct"`
	Answered          bool     `json:"answered"`
	Explanation       string   `json:"explanation,omitempty"`
}

// CategoryPerformance aggregates correctness for one category tag
type CategoryPerformance struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// QuizResult is the immutable outcome of a scored quiz session
type QuizResult struct {
	SessionID      string                         `json:"session_id"`
	ScorePercent   int                            `json:"score_percent"`
	CorrectCount   int                            `json:"correct_count"`
	TotalQuestions int                            `json:"total_questions"`
	Passed         bool                           `json:"passed"`
	Questions      []QuestionResult               `json:"questions"`
	Categories     map[string]CategoryPerformance `json:"categories"`
	TimeTakenSec   int                            `json:"time_taken_sec"`
	AutoSubmit     bool                           `json:"auto_submit"`
	CompletedAt    time.Time                      `json:"completed_at"`
}

// QuizAttempt is the persisted record of a completed quiz session
type QuizAttempt struct {
	ID             string    `json:"id" db:"id"`
	AreaID         string    `json:"area_id" db:"area_id"`
	QuizType       string    `json:"quiz_type" db:"quiz_type"`
	ScorePercent   int       `json:"score_percent" db:"score_percent"`
	CorrectCount   int       `json:"correct_count" db:"correct_count"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	Passed         bool      `json:"passed" db:"passed"`
	AutoSubmit     bool      `json:"auto_submit" db:"auto_submit"`
	TimeTakenSec   int       `json:"time_taken_sec" db:"time_taken_sec"`
	StartedAt      time.Time `json:"started_at" db:"started_at"`
	CompletedAt    time.Time `json:"completed_at" db:"completed_at"`
}
