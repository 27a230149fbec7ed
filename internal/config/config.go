package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the service
type Config struct {
	// HTTP listen address
	HTTPAddr string
	// Score percentage required to pass a quiz
	PassThreshold int
	// How long an untouched session survives before eviction
	SessionIdleWindow time.Duration
	// How often the eviction sweep runs
	SweepInterval time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. Missing values fall back to defaults.
func Load() *Config {
	// A missing .env file is fine; real deployments set the environment
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:          getString("HTTP_ADDR", ":8080"),
		PassThreshold:     getInt("PASS_THRESHOLD", 75),
		SessionIdleWindow: time.Duration(getInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
		SweepInterval:     time.Duration(getInt("SESSION_SWEEP_SECONDS", 60)) * time.Second,
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
