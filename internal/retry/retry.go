// Package retry runs transient operations again after a delay,
// optionally backing off linearly per attempt.
package retry

import (
	"context"
	"fmt"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // scale the delay by the attempt number
}

// WithRetry calls fn until it succeeds or MaxAttempts is reached.
// Cancellation is honored between attempts, not inside fn.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, err)
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
