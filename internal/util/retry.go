package util

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ErrMaxRetriesExceeded indicates all retry attempts failed.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts counts the initial call. Values below 1 mean the operation
	// is never attempted.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps every wait.
	MaxDelay time.Duration
	// Multiplier grows the wait after each retry. 1.0 keeps it constant.
	Multiplier float64
	// Jitter spreads each wait by +/- Jitter*wait. Range [0, 1].
	Jitter float64
	// ShouldRetry filters retryable errors. Nil retries everything.
	ShouldRetry func(err error) bool
	// OnRetry, if set, is called before each wait with the attempt that just
	// failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Option adjusts a Policy.
type Option func(*Policy)

// DefaultPolicy returns three attempts with exponential backoff from 500ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.2,
	}
}

// WithMaxAttempts sets the total number of attempts.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) { p.MaxAttempts = n }
}

// WithInitialDelay sets the first wait. Negative values mean no wait.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.InitialDelay = max(0, d) }
}

// WithMaxDelay caps the wait. Negative values are treated as 0.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.MaxDelay = max(0, d) }
}

// WithMultiplier sets the backoff factor. Values below 1.0 become 1.0.
func WithMultiplier(m float64) Option {
	return func(p *Policy) { p.Multiplier = max(1.0, m) }
}

// WithJitter sets the jitter fraction, clamped to [0, 1].
func WithJitter(j float64) Option {
	return func(p *Policy) { p.Jitter = min(1.0, max(0, j)) }
}

// WithRetryIf retries only errors for which cond returns true.
func WithRetryIf(cond func(err error) bool) Option {
	return func(p *Policy) { p.ShouldRetry = cond }
}

// WithOnRetry registers a hook invoked before each wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(p *Policy) { p.OnRetry = fn }
}

// Do calls fn until it succeeds, the policy gives up, or ctx is done.
// A non-retryable error is returned as is. Exhausting all attempts returns
// the last error wrapped in ErrMaxRetriesExceeded.
func Do[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}

	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("%w: no attempts configured", ErrMaxRetriesExceeded)
	}

	var lastErr error
	wait := p.InitialDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		d := jitter(wait, p.Jitter)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, d)
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		wait = grow(wait, p.Multiplier, p.MaxDelay)
	}

	return zero, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

// Retry is Do for operations without a result.
func Retry(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// grow multiplies d by m without overflowing past limit.
func grow(d time.Duration, m float64, limit time.Duration) time.Duration {
	if m <= 1.0 {
		return min(d, limit)
	}
	next := float64(d) * m
	if math.IsInf(next, 0) || math.IsNaN(next) || next >= float64(math.MaxInt64) {
		return limit
	}
	return min(time.Duration(next), limit)
}

// jitter returns d shifted by a random amount in [-f*d, +f*d], never negative.
func jitter(d time.Duration, f float64) time.Duration {
	if f <= 0 || d <= 0 {
		return d
	}
	spread := float64(d) * min(f, 1.0)
	shifted := d + time.Duration(spread*(2*rand.Float64()-1)) //nolint:gosec // math/rand is fine for jitter
	return max(0, shifted)
}
