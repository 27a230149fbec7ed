package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreUnavailable wraps backing-store failures so callers can retry
// without inspecting driver errors
var ErrStoreUnavailable = errors.New("database: store unavailable")

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// driver: "sqlite" (default, file at DB_PATH) or "postgres"
// (DATABASE_URL).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	if dbType == "postgres" {
		db, err = sqlx.Connect("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
	} else {
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dataDir := "data"
			if mkErr := os.MkdirAll(dataDir, 0755); mkErr != nil {
				return fmt.Errorf("failed to create data directory: %v", mkErr)
			}
			dbPath = filepath.Join(dataDir, "nurseprep.db")
		}

		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			category TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			term TEXT NOT NULL,
			definition TEXT NOT NULL,
			category TEXT DEFAULT '',
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 0,
			repetitions INTEGER DEFAULT 0,
			due_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_reviewed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (deck_id) REFERENCES decks(id)
		)`,
		`CREATE TABLE IF NOT EXISTS review_events (
			id TEXT PRIMARY KEY,
			card_id TEXT NOT NULL,
			quality INTEGER NOT NULL,
			response_time_ms INTEGER DEFAULT 0,
			reviewed_at TIMESTAMP NOT NULL,
			FOREIGN KEY (card_id) REFERENCES cards(id)
		)`,
		`CREATE TABLE IF NOT EXISTS study_areas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			area_id TEXT NOT NULL,
			prompt TEXT NOT NULL,
			explanation TEXT DEFAULT '',
			difficulty TEXT DEFAULT 'medium',
			category TEXT DEFAULT '',
			cognitive_level TEXT DEFAULT '',
			time_budget_sec INTEGER DEFAULT 0,
			FOREIGN KEY (area_id) REFERENCES study_areas(id)
		)`,
		`CREATE TABLE IF NOT EXISTS question_options (
			id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			text TEXT NOT NULL,
			is_correct BOOLEAN DEFAULT FALSE,
			position INTEGER DEFAULT 0,
			PRIMARY KEY (question_id, id),
			FOREIGN KEY (question_id) REFERENCES questions(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			id TEXT PRIMARY KEY,
			area_id TEXT NOT NULL,
			quiz_type TEXT NOT NULL,
			score_percent INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			passed BOOLEAN NOT NULL,
			auto_submit BOOLEAN DEFAULT FALSE,
			time_taken_sec INTEGER DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS study_sessions (
			id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			cards_studied INTEGER DEFAULT 0,
			cards_known INTEGER DEFAULT 0,
			duration_sec INTEGER DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
