package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Sleeper waits for d or until ctx is done, whichever comes first. It
// returns ctx.Err() when the wait was cut short.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Backoff computes the wait before the next attempt. attempt is 1-based and
// names the attempt that just failed. Returning zero retries immediately.
type Backoff func(attempt int, err error) time.Duration

// LinearBackoff waits 2*attempt units after a transient failure (1st
// failure: 2u, 2nd: 4u, ...) and retries immediately otherwise.
func LinearBackoff(unit time.Duration) Backoff {
	return func(attempt int, err error) time.Duration {
		if !IsTransient(err) {
			return 0
		}
		return time.Duration(2*attempt) * unit
	}
}

// ExponentialBackoff grows the wait by multiplier per attempt from initial,
// capped at maxWait, with ±jitter as a fraction of the computed delay.
func ExponentialBackoff(initial, maxWait time.Duration, multiplier, jitter float64) Backoff {
	return func(attempt int, _ error) time.Duration {
		delay := float64(initial) * math.Pow(multiplier, float64(attempt-1))
		if delay > float64(maxWait) {
			delay = float64(maxWait)
		}
		if jitter > 0 {
			delay += (rand.Float64()*2 - 1) * delay * jitter
		}
		if delay < 0 {
			delay = 0
		}
		return time.Duration(delay)
	}
}

// RetryConfig controls a bounded retry loop.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int

	// Backoff computes the wait between attempts. Nil retries immediately.
	Backoff Backoff

	// ShouldRetry decides whether an error is worth another attempt. Nil
	// retries every error.
	ShouldRetry func(err error) bool

	// OnRetry is called before each wait with the failed attempt number.
	OnRetry func(attempt int, wait time.Duration, err error)

	// Sleep overrides the wait implementation. Nil uses Sleep.
	Sleep Sleeper
}

// Do runs fn until it succeeds, the attempt budget is spent, ShouldRetry
// declines, or ctx is cancelled. No wait follows the final attempt.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions that return a value.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	maxAttempts := max(cfg.MaxAttempts, 1)
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, lastErr
		}
		if attempt == maxAttempts {
			break
		}

		var wait time.Duration
		if cfg.Backoff != nil {
			wait = cfg.Backoff(attempt, err)
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, wait, err)
		}
		if wait > 0 {
			if sleepErr := sleep(ctx, wait); sleepErr != nil {
				return zero, lastErr
			}
		}
	}

	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs each retry at warn.
func RetryLogger(service, operation string) func(int, time.Duration, error) {
	return func(attempt int, wait time.Duration, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
}
