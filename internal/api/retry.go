package api

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds the retry loop applied to eligible failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, first call included.
	MaxAttempts int
	// InitialDelay is the wait before the first retry; it doubles on each
	// subsequent retry, without jitter.
	InitialDelay time.Duration
	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration
	// MaxElapsed caps the total time spent retrying.
	MaxElapsed time.Duration
}

// DefaultRetryConfig mirrors the original client's retry parameters plus the
// ceilings it lacked.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		MaxElapsed:   2 * time.Minute,
	}
}

// Retrier wraps an operation with bounded exponential backoff. Only failures
// Retryable reports as eligible are retried; anything else propagates
// unchanged after the first attempt.
type Retrier struct {
	cfg RetryConfig

	// sleep waits for d or until ctx is done. Tests replace it to observe
	// the delays instead of waiting them out.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier builds a Retrier. Zero-valued fields fall back to defaults.
func NewRetrier(cfg RetryConfig) *Retrier {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = def.MaxElapsed
	}
	return &Retrier{cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Retrier) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = r.cfg.MaxDelay
	b.MaxElapsedTime = r.cfg.MaxElapsed
	b.Reset()
	return b
}

// Do runs op, retrying eligible failures until an attempt succeeds, the
// attempt budget is spent, the backoff ceiling is hit, or ctx is cancelled.
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	b := r.newBackOff()
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt >= r.cfg.MaxAttempts || !Retryable(err) {
			return err
		}
		d := b.NextBackOff()
		if d == backoff.Stop {
			return err
		}
		if serr := r.sleep(ctx, d); serr != nil {
			return err
		}
	}
}

// DoValue is Do for operations returning a value.
func DoValue[T any](ctx context.Context, r *Retrier, op func() (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
