package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/nurseprep/internal/database"
	"github.com/example/nurseprep/internal/quiz"
	"github.com/example/nurseprep/internal/session"
	"github.com/example/nurseprep/internal/spaced_repetition"
	"github.com/example/nurseprep/internal/study"
)

// Server exposes the session/scheduling core over HTTP
type Server struct {
	router   *mux.Router
	quiz     *quiz.Engine
	study    *study.Engine
	attempts *database.AttemptRepository
	areas    *database.QuestionRepository
	cards    *database.CardRepository
}

// NewServer wires the engines into an HTTP handler
func NewServer(quizEngine *quiz.Engine, studyEngine *study.Engine, attempts *database.AttemptRepository, areas *database.QuestionRepository, cards *database.CardRepository) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		quiz:     quizEngine,
		study:    studyEngine,
		attempts: attempts,
		areas:    areas,
		cards:    cards,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/study-areas", s.handleListAreas).Methods(http.MethodGet)
	api.HandleFunc("/decks", s.handleListDecks).Methods(http.MethodGet)

	api.HandleFunc("/quiz/start", s.handleQuizStart).Methods(http.MethodPost)
	api.HandleFunc("/quiz/{sessionID}/answer", s.handleQuizAnswer).Methods(http.MethodPost)
	api.HandleFunc("/quiz/{sessionID}/next", s.handleQuizNext).Methods(http.MethodGet)
	api.HandleFunc("/quiz/{sessionID}/submit", s.handleQuizSubmit).Methods(http.MethodPost)

	api.HandleFunc("/study/start", s.handleStudyStart).Methods(http.MethodPost)
	api.HandleFunc("/study/{sessionID}/review", s.handleStudyReview).Methods(http.MethodPost)

	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
}

// errorResponse is the structured error envelope; internal faults never
// leak to the client
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("api: encode response: %v", err)
		}
	}
}

// writeError maps the core error taxonomy to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session_not_found"})
	case errors.Is(err, quiz.ErrUnknownQuestion):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown_question"})
	case errors.Is(err, spaced_repetition.ErrUnknownCard):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown_card"})
	case errors.Is(err, quiz.ErrSessionNotInProgress):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session_not_in_progress"})
	case errors.Is(err, quiz.ErrSessionExhausted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session_exhausted"})
	case errors.Is(err, quiz.ErrEmptyPool):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "empty_pool"})
	case errors.Is(err, spaced_repetition.ErrInvalidQuality):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_quality"})
	case errors.Is(err, database.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store_unavailable"})
	default:
		log.Printf("api: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
