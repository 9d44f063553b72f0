package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff returns the wait before the given attempt (1 for the first
	// retry). When nil, exponential backoff from the fields below is used.
	Backoff func(attempt int) time.Duration
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential delay.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64
	// Jitter adds randomness to exponential backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry executes fn until it succeeds or retrying stops. fn receives the
// zero-based attempt index. The error of the last attempt is returned when
// the ceiling is reached; ctx.Err() is returned if ctx ends before or
// between attempts.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = func(attempt int) time.Duration {
			return ExponentialBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff, cfg.BackoffFactor, cfg.Jitter)
		}
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt)
			if wait < 0 {
				wait = 0
			}
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, lastErr, wait)
			}
			if err := sleep(ctx, wait); err != nil {
				return zero, err
			}
		}

		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !cfg.RetryIf(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// ExponentialBackoff returns initial * factor^(attempt-1), randomized by
// ±jitter and capped at maxBackoff. Zero or negative inputs fall back to
// 100ms, 10s and a factor of 2.
func ExponentialBackoff(attempt int, initial, maxBackoff time.Duration, factor, jitter float64) time.Duration {
	if attempt < 1 {
		return 0
	}
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}
	if factor <= 0 {
		factor = 2.0
	}

	backoffFloat := float64(initial) * math.Pow(factor, float64(attempt-1))

	if jitter > 0 {
		jitterRange := backoffFloat * jitter
		backoffFloat += (rand.Float64()*2 - 1) * jitterRange
	}

	if backoffFloat > float64(maxBackoff) {
		backoffFloat = float64(maxBackoff)
	}
	if backoffFloat < 0 {
		backoffFloat = float64(initial)
	}

	return time.Duration(backoffFloat)
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
