// Package retry re-runs operations that failed with a transient, retryable
// error, waiting with exponential backoff between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const maxDuration = time.Duration(math.MaxInt64)

const (
	// DefaultMaxAttempts is the number of attempts made before giving up.
	DefaultMaxAttempts = 5

	// DefaultBaseDelay is the wait after the first retryable failure.
	DefaultBaseDelay = 500 * time.Millisecond
)

// ErrRetriesExhausted is returned once every attempt failed with a retryable error.
var ErrRetriesExhausted = errors.New("exceeded maximum retries")

// Policy controls how an operation is retried.
type Policy struct {
	// MaxAttempts bounds the number of attempts. Values below 1 use DefaultMaxAttempts.
	MaxAttempts int

	// BaseDelay is multiplied by 2^attempt to get the wait after each failure.
	// Zero uses DefaultBaseDelay.
	BaseDelay time.Duration

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil means nothing is retried.
	Retryable func(error) bool

	// OnRetry is called before each wait, with the zero-based attempt that failed.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait after the given zero-based attempt failed.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	d := maxDuration
	if attempt < 63 && base <= maxDuration>>uint(attempt) {
		d = base << uint(attempt)
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// MaxAttempts retryable failures have happened. Attempts run one after the
// other; only this call chain waits during backoff.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.maxAttempts()

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry aborted after attempt %d: %w", attempt+1, err)
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

// DoErr is Do for operations that only return an error.
func DoErr(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
