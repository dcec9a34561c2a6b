// Package config reads client configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach the backend.
type Config struct {
	APIBaseURL string
	WSBaseURL  string

	RequestTimeout time.Duration

	// Retry knobs for idempotent calls.
	RetryAttempts   int
	RetryDelay      time.Duration
	RetryMaxDelay   time.Duration
	RetryMaxElapsed time.Duration

	// Directory for persisted session state (token, player identity).
	ConfigDir string
}

// Load reads configuration from environment variables, falling back to the
// defaults the original deployment used. A .env file is honored if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:9980/api/v1"),
		WSBaseURL:       getEnv("WS_BASE_URL", "ws://localhost:9914"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RetryAttempts:   getInt("RETRY_ATTEMPTS", 3),
		RetryDelay:      getDuration("RETRY_DELAY", time.Second),
		RetryMaxDelay:   getDuration("RETRY_MAX_DELAY", 30*time.Second),
		RetryMaxElapsed: getDuration("RETRY_MAX_ELAPSED", 2*time.Minute),
		ConfigDir:       os.Getenv("MAHJONG_CONFIG"),
	}

	if cfg.ConfigDir == "" {
		home, _ := os.UserHomeDir()
		cfg.ConfigDir = filepath.Join(home, ".mahjong-tui")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
