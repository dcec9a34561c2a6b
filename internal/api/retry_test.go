package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep captures backoff delays instead of waiting them out.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetrierRetriesEligibleFailures(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	var delays []time.Duration
	r.sleep = recordingSleep(&delays)

	attempts := 0
	err := r.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &APIError{Status: 503, Message: "request failed (503)"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestRetrierDoesNotRetryClientErrors(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	var delays []time.Duration
	r.sleep = recordingSleep(&delays)

	attempts := 0
	err := r.Do(context.Background(), func() error {
		attempts++
		return &APIError{Status: 400, Message: "room name required"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, delays)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "room name required", apiErr.Message)
}

func TestRetrierExhaustsAttemptBudget(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	var delays []time.Duration
	r.sleep = recordingSleep(&delays)

	attempts := 0
	err := r.Do(context.Background(), func() error {
		attempts++
		return &APIError{Timeout: true, Message: "request timed out, check your network"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, delays, 2)
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	r.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	attempts := 0
	err := r.Do(context.Background(), func() error {
		attempts++
		return &APIError{Status: 0, Message: "network connection failed"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoValue(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})
	var delays []time.Duration
	r.sleep = recordingSleep(&delays)

	calls := 0
	got, err := DoValue(context.Background(), r, func() (string, error) {
		calls++
		if calls == 1 {
			return "", &APIError{Status: 502, Message: "request failed (502)"}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"no response", &APIError{Status: 0}, true},
		{"timeout", &APIError{Timeout: true}, true},
		{"internal error", &APIError{Status: 500}, true},
		{"bad gateway", &APIError{Status: 503}, true},
		{"bad request", &APIError{Status: 400}, false},
		{"unauthorized", &APIError{Status: 401}, false},
		{"too many requests", &APIError{Status: 429}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Retryable(tc.err))
		})
	}
}
