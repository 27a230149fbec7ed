package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/nurseprep/internal/quiz"
	"github.com/example/nurseprep/internal/spaced_repetition"
	"github.com/example/nurseprep/internal/study"
	"github.com/example/nurseprep/pkg/models"
)

// safeQuestion is a question with correct answers withheld
type safeQuestion struct {
	ID         string            `json:"id"`
	Prompt     string            `json:"prompt"`
	Options    []safeOption      `json:"options"`
	Difficulty models.Difficulty `json:"difficulty"`
	Category   string            `json:"category"`
	Multi      bool              `json:"multi"`
}

type safeOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func sanitize(q models.Question) safeQuestion {
	sq := safeQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Difficulty: q.Difficulty,
		Category:   q.Category,
		Multi:      q.MultiSelect(),
	}
	for _, opt := range q.Options {
		sq.Options = append(sq.Options, safeOption{ID: opt.ID, Text: opt.Text})
	}
	return sq
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.cards.Decks()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.areas.Areas()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

type quizStartRequest struct {
	AreaID        string `json:"area_id"`
	QuizType      string `json:"quiz_type"`
	QuestionCount int    `json:"question_count"`
	TimeLimitSec  int    `json:"time_limit_sec"`
	Difficulty    string `json:"difficulty_level"`
	Category      string `json:"category"`
	Shuffle       bool   `json:"shuffle"`
}

type quizStartResponse struct {
	SessionID      string         `json:"session_id"`
	Questions      []safeQuestion `json:"questions"`
	TotalQuestions int            `json:"total_questions"`
	TimeLimitSec   int            `json:"time_limit_sec"`
	Adaptive       bool           `json:"adaptive"`
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	var req quizStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	info, err := s.quiz.Start(quiz.Config{
		AreaID:        req.AreaID,
		Type:          models.QuizType(req.QuizType),
		QuestionCount: req.QuestionCount,
		TimeLimitSec:  req.TimeLimitSec,
		Difficulty:    models.Difficulty(req.Difficulty),
		Category:      req.Category,
		Shuffle:       req.Shuffle,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := quizStartResponse{
		SessionID:      info.SessionID,
		Questions:      []safeQuestion{},
		TotalQuestions: info.TotalQuestions,
		TimeLimitSec:   info.TimeLimitSec,
		Adaptive:       info.Adaptive,
	}
	for _, q := range info.Questions {
		resp.Questions = append(resp.Questions, sanitize(q))
	}
	writeJSON(w, http.StatusCreated, resp)
}

type quizAnswerRequest struct {
	QuestionID        string   `json:"question_id"`
	SelectedOptionID  string   `json:"selected_option_id"`
	SelectedOptionIDs []string `json:"selected_option_ids"`
	TimeSpentSec      int      `json:"time_spent_sec"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	selected := req.SelectedOptionIDs
	if len(selected) == 0 && req.SelectedOptionID != "" {
		selected = []string{req.SelectedOptionID}
	}

	err := s.quiz.Answer(sessionID, models.Answer{
		QuestionID:        req.QuestionID,
		SelectedOptionIDs: selected,
		TimeSpentSec:      req.TimeSpentSec,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	q, err := s.quiz.NextQuestion(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitize(q))
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	result, err := s.quiz.Submit(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type studyStartRequest struct {
	DeckID   string `json:"deck_id"`
	Mode     string `json:"mode"`
	MaxCards int    `json:"max_cards"`
}

type studyStartResponse struct {
	SessionID     string        `json:"session_id"`
	Cards         []models.Card `json:"cards"`
	DueCardsCount int           `json:"due_cards_count"`
	SessionType   string        `json:"session_type"`
}

func (s *Server) handleStudyStart(w http.ResponseWriter, r *http.Request) {
	var req studyStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	mode := study.Mode(req.Mode)
	if mode == "" {
		mode = study.ModeSpaced
	}

	info, err := s.study.Start(req.DeckID, mode, req.MaxCards)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, studyStartResponse{
		SessionID:     info.SessionID,
		Cards:         info.Cards,
		DueCardsCount: info.DueCardsCount,
		SessionType:   string(info.SessionType),
	})
}

type studyReviewRequest struct {
	CardID         string `json:"card_id"`
	Quality        int    `json:"quality"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

type studyReviewResponse struct {
	CardID       string `json:"card_id"`
	IntervalDays int    `json:"interval_days"`
	DueAt        string `json:"due_at"`
	Remaining    int    `json:"remaining"`
	Completed    bool   `json:"completed"`
}

func (s *Server) handleStudyReview(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req studyReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	info, err := s.study.Review(sessionID, req.CardID, spaced_repetition.QualityResponse(req.Quality), req.ResponseTimeMs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, studyReviewResponse{
		CardID:       info.Card.ID,
		IntervalDays: info.Card.IntervalDays,
		DueAt:        info.Card.DueAt.Format("2006-01-02"),
		Remaining:    info.Remaining,
		Completed:    info.Completed,
	})
}

type statsResponse struct {
	TotalQuizzes   int                  `json:"total_quizzes"`
	AverageScore   float64              `json:"average_score"`
	RecentAttempts []models.QuizAttempt `json:"recent_attempts"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.attempts.OverallStats()
	if err != nil {
		writeError(w, err)
		return
	}
	recent, err := s.attempts.RecentAttempts(10)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalQuizzes:   stats.TotalQuizzes,
		AverageScore:   stats.AverageScore,
		RecentAttempts: recent,
	})
}
