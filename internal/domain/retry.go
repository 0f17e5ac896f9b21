package domain

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryConfig controls the jittered-backoff retry applied to
// ErrConcurrentModification per spec §5/§7.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig is 4 attempts (the first try plus up to 3 retries)
// with a 50ms base delay, matching the "retried up to 3 times with
// jittered backoff" contract in spec §5.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 4, BaseDelay: 50 * time.Millisecond}
}

// WithRetry runs fn, retrying while it returns an error wrapping
// ErrConcurrentModification, up to cfg.MaxAttempts total attempts. Any
// other error is returned immediately without retrying.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := cfg.BaseDelay * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff/2 + jitter/2):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrConcurrentModification) {
			return lastErr
		}
	}

	return lastErr
}
