// Package limiter bounds how many operations run at once against a shared
// resource, admitting waiting callers in FIFO order.
package limiter

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config configures a Limiter.
type Config struct {
	// Name identifies the limiter in logs and traces (e.g. "api", "zones").
	Name string

	// Concurrency is the maximum number of operations in flight. Values below 1 are treated as 1.
	Concurrency int

	// RequestsPerSecond paces admissions with a token bucket. 0 disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size. Values below 1 are treated as 1.
	Burst int
}

// Limiter is a counting semaphore with FIFO admission and optional pacing.
// It never inspects the result of the operations it admits.
type Limiter struct {
	name     string
	capacity int64
	sem      *semaphore.Weighted
	pacer    *rate.Limiter
}

// New creates a Limiter from cfg.
func New(cfg Config) *Limiter {
	capacity := int64(cfg.Concurrency)
	if capacity < 1 {
		capacity = 1
	}

	l := &Limiter{
		name:     cfg.Name,
		capacity: capacity,
		sem:      semaphore.NewWeighted(capacity),
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		l.pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return l
}

// Name returns the limiter's name.
func (l *Limiter) Name() string {
	return l.name
}

// Capacity returns the maximum number of concurrent operations.
func (l *Limiter) Capacity() int {
	return int(l.capacity)
}

// Do waits for a slot, runs fn and releases the slot when fn returns,
// whatever the outcome. Waiting is abandoned only when ctx is done.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("limiter %s: waiting for slot: %w", l.name, err)
	}
	defer l.sem.Release(1)

	if l.pacer != nil {
		if err := l.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("limiter %s: waiting for rate: %w", l.name, err)
		}
	}

	return fn(ctx)
}

// Run is Do for operations that produce a value.
func Run[T any](ctx context.Context, l *Limiter, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := l.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}
