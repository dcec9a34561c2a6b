package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("WS_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("RETRY_ATTEMPTS", "")
	t.Setenv("MAHJONG_CONFIG", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:9980/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:9914", cfg.WSBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, 2*time.Minute, cfg.RetryMaxElapsed)
	assert.NotEmpty(t, cfg.ConfigDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://game.example.com/api/v1")
	t.Setenv("WS_BASE_URL", "ws://game.example.com")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("MAHJONG_CONFIG", "/tmp/mahjong-test")

	cfg := Load()
	assert.Equal(t, "http://game.example.com/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "ws://game.example.com", cfg.WSBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, "/tmp/mahjong-test", cfg.ConfigDir)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("RETRY_ATTEMPTS", "many")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
}
