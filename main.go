package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/nurseprep/internal/api"
	"github.com/example/nurseprep/internal/config"
	"github.com/example/nurseprep/internal/database"
	"github.com/example/nurseprep/internal/quiz"
	"github.com/example/nurseprep/internal/session"
	"github.com/example/nurseprep/internal/spaced_repetition"
	"github.com/example/nurseprep/internal/study"
)

func main() {
	cfg := config.Load()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	cardRepo := database.NewCardRepository()
	questionRepo := database.NewQuestionRepository()
	attemptRepo := database.NewAttemptRepository()
	studySessionRepo := database.NewStudySessionRepository()

	var quizEngine *quiz.Engine
	var studyEngine *study.Engine

	// An evicted in-progress quiz is force-expired so the user still
	// gets a result; idle study sessions are archived as they stand.
	store := session.NewStore(cfg.SessionIdleWindow, func(s session.Session) {
		switch sess := s.(type) {
		case *quiz.Session:
			quizEngine.ExpireSession(sess)
		case *study.Session:
			studyEngine.ExpireSession(sess)
		}
	})

	quizEngine = quiz.NewEngine(store, questionRepo, attemptRepo, cfg.PassThreshold)
	studyEngine = study.NewEngine(store, cardRepo, spaced_repetition.NewSM2(), studySessionRepo)

	store.StartSweeper(cfg.SweepInterval)
	defer store.Stop()

	server := api.NewServer(quizEngine, studyEngine, attemptRepo, questionRepo, cardRepo)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		if err := httpServer.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Listening on %s. Press Ctrl+C to stop.", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped successfully")
}
