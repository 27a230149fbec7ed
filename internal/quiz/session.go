package quiz

import (
	"errors"
	"time"

	"github.com/example/nurseprep/pkg/models"
)

// Sentinel errors for the quiz engine. Check with errors.Is.
var (
	ErrEmptyPool            = errors.New("quiz: not enough questions to satisfy the draw")
	ErrUnknownQuestion      = errors.New("quiz: question not in session")
	ErrSessionNotInProgress = errors.New("quiz: session is not in progress")
	ErrSessionExhausted     = errors.New("quiz: no further questions to draw")
)

// Status is the lifecycle state of a quiz session.
// Created and Scored are instantaneous; InProgress is the only state
// that accepts answers or timer ticks.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusExpired    Status = "expired"
	StatusScored     Status = "scored"
)

// Config holds the parameters for one quiz session
type Config struct {
	AreaID        string
	Type          models.QuizType
	QuestionCount int
	TimeLimitSec  int               // 0 = no wall-clock budget
	Difficulty    models.Difficulty // empty = any tier
	Category      string            // empty = any category
	Shuffle       bool              // practice only: shuffle the draw
}

// Session is the mutable state of one quiz attempt. All access goes
// through the session store's per-session lock.
type Session struct {
	ID        string
	Config    Config
	Questions []models.Question
	Position  int
	Answers   map[string]models.Answer
	Status    Status
	StartedAt time.Time

	// Adaptive draw state
	tier    models.Difficulty
	reserve map[models.Difficulty][]models.Question

	result *models.QuizResult
	timer  *time.Timer
}

// SessionID implements session.Session
func (s *Session) SessionID() string {
	return s.ID
}

// Adaptive reports whether the session draws questions by running accuracy
func (s *Session) Adaptive() bool {
	return s.Config.Type == models.QuizAdaptive
}

// hasQuestion reports whether the question has been drawn into the session
func (s *Session) hasQuestion(questionID string) bool {
	for _, q := range s.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

// apply records an answer, overwriting any prior answer for the same
// question. Valid only while InProgress; the position does not advance.
func (s *Session) apply(ans models.Answer) error {
	if s.Status != StatusInProgress {
		return ErrSessionNotInProgress
	}
	if !s.hasQuestion(ans.QuestionID) {
		return ErrUnknownQuestion
	}
	if ans.TimeSpentSec < 0 {
		ans.TimeSpentSec = 0
	}
	s.Answers[ans.QuestionID] = ans
	return nil
}

// stopTimer releases the countdown timer if one is running. A timer
// that already fired is a no-op in expire, so racing Stop is safe.
func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
