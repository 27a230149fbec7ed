package quiz

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/nurseprep/internal/session"
	"github.com/example/nurseprep/pkg/models"
)

// QuestionSource supplies the question pool for an area. The content
// store behind it is an external collaborator.
type QuestionSource interface {
	QuestionsByArea(areaID string) ([]models.Question, error)
}

// AttemptRecorder persists completed quiz attempts
type AttemptRecorder interface {
	RecordAttempt(attempt *models.QuizAttempt) error
}

// Engine owns the lifecycle of quiz sessions: drawing questions,
// recording answers, running countdown timers and scoring on submit.
type Engine struct {
	store         *session.Store
	questions     QuestionSource
	attempts      AttemptRecorder
	passThreshold int
}

// NewEngine creates a quiz engine. passThreshold <= 0 selects the default.
func NewEngine(store *session.Store, questions QuestionSource, attempts AttemptRecorder, passThreshold int) *Engine {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	return &Engine{
		store:         store,
		questions:     questions,
		attempts:      attempts,
		passThreshold: passThreshold,
	}
}

// StartInfo is the client-facing view of a freshly started session.
// Correct answers are withheld by the transport layer.
type StartInfo struct {
	SessionID      string
	Questions      []models.Question
	TotalQuestions int
	TimeLimitSec   int
	Adaptive       bool
}

// Start draws questions for a new session and registers it with the
// store. For adaptive sessions only the first question is drawn; the
// rest are drawn one at a time by NextQuestion as accuracy dictates.
func (e *Engine) Start(cfg Config) (*StartInfo, error) {
	if cfg.QuestionCount <= 0 {
		return nil, fmt.Errorf("%w: question count %d", ErrEmptyPool, cfg.QuestionCount)
	}

	pool, err := e.questions.QuestionsByArea(cfg.AreaID)
	if err != nil {
		return nil, err
	}
	pool = filterByCategory(pool, cfg.Category)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	sess := &Session{
		ID:        uuid.New().String(),
		Config:    cfg,
		Answers:   make(map[string]models.Answer),
		Status:    StatusCreated,
		StartedAt: time.Now(),
	}

	if cfg.Type == models.QuizAdaptive {
		if err := e.startAdaptive(sess, pool, rnd); err != nil {
			return nil, err
		}
	} else {
		if err := e.startFixed(sess, pool, rnd); err != nil {
			return nil, err
		}
	}

	// Created is instantaneous: the session is observable only InProgress
	sess.Status = StatusInProgress
	e.store.Create(sess)

	if cfg.TimeLimitSec > 0 {
		id := sess.ID
		// Arm the timer under the session lock so it cannot race a
		// concurrent submit on the freshly created session.
		_ = e.store.With(id, func(v session.Session) error {
			v.(*Session).timer = time.AfterFunc(time.Duration(cfg.TimeLimitSec)*time.Second, func() {
				e.expire(id)
			})
			return nil
		})
	}

	return &StartInfo{
		SessionID:      sess.ID,
		Questions:      append([]models.Question(nil), sess.Questions...),
		TotalQuestions: cfg.QuestionCount,
		TimeLimitSec:   cfg.TimeLimitSec,
		Adaptive:       sess.Adaptive(),
	}, nil
}

// startFixed draws the full question list up front. Practice sessions
// preserve pool order unless shuffling is requested; timed and NCLEX
// simulation sessions always randomize the draw, fixed thereafter.
func (e *Engine) startFixed(sess *Session, pool []models.Question, rnd *rand.Rand) error {
	cfg := sess.Config
	if cfg.Difficulty != "" {
		pool = filterByDifficulty(pool, cfg.Difficulty)
	}
	if len(pool) < cfg.QuestionCount {
		return fmt.Errorf("%w: need %d questions, pool has %d", ErrEmptyPool, cfg.QuestionCount, len(pool))
	}

	if cfg.Type != models.QuizPractice || cfg.Shuffle {
		rnd.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}
	sess.Questions = append([]models.Question(nil), pool[:cfg.QuestionCount]...)
	return nil
}

// startAdaptive groups the pool by tier and draws the first question at
// the requested (or medium) starting tier.
func (e *Engine) startAdaptive(sess *Session, pool []models.Question, rnd *rand.Rand) error {
	cfg := sess.Config
	if len(pool) < cfg.QuestionCount {
		return fmt.Errorf("%w: need %d questions, pool has %d", ErrEmptyPool, cfg.QuestionCount, len(pool))
	}

	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	sess.reserve = make(map[models.Difficulty][]models.Question)
	for _, q := range pool {
		sess.reserve[q.Difficulty] = append(sess.reserve[q.Difficulty], q)
	}

	sess.tier = cfg.Difficulty
	if sess.tier == "" {
		sess.tier = models.DifficultyMedium
	}

	first, ok := drawFromReserve(sess.reserve, sess.tier)
	if !ok {
		return fmt.Errorf("%w: reserve empty at start", ErrEmptyPool)
	}
	sess.Questions = append(sess.Questions, first)
	return nil
}

// drawFromReserve pops a question at the target tier, falling back to
// the nearest populated tier (easier first) when the target runs dry.
func drawFromReserve(reserve map[models.Difficulty][]models.Question, target models.Difficulty) (models.Question, bool) {
	idx := tierIndex(target)
	for dist := 0; dist < len(tierOrder); dist++ {
		for _, i := range []int{idx - dist, idx + dist} {
			if i < 0 || i >= len(tierOrder) {
				continue
			}
			tier := tierOrder[i]
			if qs := reserve[tier]; len(qs) > 0 {
				q := qs[0]
				reserve[tier] = qs[1:]
				return q, true
			}
		}
	}
	return models.Question{}, false
}

// Answer records an answer against the session. It overwrites any prior
// answer for the question and never advances the position.
func (e *Engine) Answer(sessionID string, ans models.Answer) error {
	return e.store.With(sessionID, func(v session.Session) error {
		return v.(*Session).apply(ans)
	})
}

// NextQuestion advances the session to its next question and returns
// it. For adaptive sessions the question is drawn at the tier chosen by
// the running-accuracy controller; for fixed draws it is simply the
// next in order. ErrSessionExhausted signals the draw is complete.
func (e *Engine) NextQuestion(sessionID string) (models.Question, error) {
	var next models.Question
	err := e.store.With(sessionID, func(v session.Session) error {
		s := v.(*Session)
		if s.Status != StatusInProgress {
			return ErrSessionNotInProgress
		}

		if s.Adaptive() && len(s.Questions) < s.Config.QuestionCount {
			answered, correct := runningTally(s.Questions, s.Answers)
			s.tier = NextTier(s.tier, answered, correct)
			q, ok := drawFromReserve(s.reserve, s.tier)
			if !ok {
				return fmt.Errorf("%w: adaptive reserve exhausted", ErrEmptyPool)
			}
			s.Questions = append(s.Questions, q)
		}

		if s.Position+1 >= len(s.Questions) {
			return ErrSessionExhausted
		}
		s.Position++
		next = s.Questions[s.Position]
		return nil
	})
	return next, err
}

// Submit freezes the session, scores it and returns the result. It is
// valid from InProgress (explicit submit) and idempotent: a second call
// returns the cached result without recomputing or re-persisting.
func (e *Engine) Submit(sessionID string) (*models.QuizResult, error) {
	var result *models.QuizResult
	err := e.store.With(sessionID, func(v session.Session) error {
		s := v.(*Session)
		if s.Status == StatusScored {
			result = s.result
			return nil
		}
		if s.Status != StatusInProgress {
			return ErrSessionNotInProgress
		}

		s.stopTimer()
		s.Status = StatusSubmitted
		r := Score(s, e.passThreshold, time.Now(), false)

		if err := e.recordAttempt(s, &r); err != nil {
			// Leave the session submittable again so the caller can retry
			s.Status = StatusInProgress
			return err
		}

		s.result = &r
		s.Status = StatusScored
		result = s.result
		return nil
	})
	return result, err
}

// Result returns the cached result of a scored session
func (e *Engine) Result(sessionID string) (*models.QuizResult, error) {
	var result *models.QuizResult
	err := e.store.With(sessionID, func(v session.Session) error {
		s := v.(*Session)
		if s.Status != StatusScored {
			return ErrSessionNotInProgress
		}
		result = s.result
		return nil
	})
	return result, err
}

// expire is the countdown timer callback. A timer that fires after the
// session was submitted or retired finds nothing to do.
func (e *Engine) expire(sessionID string) {
	err := e.store.With(sessionID, func(v session.Session) error {
		e.expireLocked(v.(*Session))
		return nil
	})
	if err != nil && err != session.ErrSessionNotFound {
		log.Printf("quiz: expire %s: %v", sessionID, err)
	}
}

// ExpireSession force-expires a session that is being evicted. The
// session lock is already held by the store's sweep, so this must not
// call back into the store.
func (e *Engine) ExpireSession(s *Session) {
	e.expireLocked(s)
}

// expireLocked transitions an InProgress session to Expired and scores
// it as an auto-submit. Answers arriving after this point are rejected;
// expiry is authoritative. Terminal sessions are left alone.
func (e *Engine) expireLocked(s *Session) {
	if s.Status != StatusInProgress {
		return
	}
	s.stopTimer()
	s.Status = StatusExpired
	r := Score(s, e.passThreshold, time.Now(), true)
	s.result = &r
	s.Status = StatusScored

	// The user still gets the cached result if this write fails; the
	// failure is logged rather than swallowed.
	if err := e.recordAttempt(s, &r); err != nil {
		log.Printf("quiz: record expired attempt %s: %v", s.ID, err)
	}
}

func (e *Engine) recordAttempt(s *Session, r *models.QuizResult) error {
	if e.attempts == nil {
		return nil
	}
	return e.attempts.RecordAttempt(&models.QuizAttempt{
		ID:             s.ID,
		AreaID:         s.Config.AreaID,
		QuizType:       string(s.Config.Type),
		ScorePercent:   r.ScorePercent,
		CorrectCount:   r.CorrectCount,
		TotalQuestions: r.TotalQuestions,
		Passed:         r.Passed,
		AutoSubmit:     r.AutoSubmit,
		TimeTakenSec:   r.TimeTakenSec,
		StartedAt:      s.StartedAt,
		CompletedAt:    r.CompletedAt,
	})
}

func filterByCategory(pool []models.Question, category string) []models.Question {
	if category == "" {
		return pool
	}
	var out []models.Question
	for _, q := range pool {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

func filterByDifficulty(pool []models.Question, d models.Difficulty) []models.Question {
	var out []models.Question
	for _, q := range pool {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out
}
