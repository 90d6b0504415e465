// Package retry wraps an outbound call with bounded, predicate-driven retries.
//
// Do invokes op once and then up to Policy.MaxRetries more times while
// Policy.ShouldRetry reports the returned error as transient. Between attempts
// it waits Policy.Backoff(attempt, err).
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	// DefaultMaxRetries is the number of attempts made after the first one.
	DefaultMaxRetries = 3
	// DefaultBase is the delay before the first retry.
	DefaultBase = 100 * time.Millisecond
	// DefaultCap bounds a single backoff delay.
	DefaultCap = 10 * time.Second
)

// Policy controls when and how often an operation is retried.
type Policy struct {
	MaxRetries  int
	ShouldRetry func(err error) bool
	Backoff     func(attempt int, err error) time.Duration
	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// RetryAfterHinter is implemented by errors that carry a server-provided wait hint.
type RetryAfterHinter interface {
	RetryAfter() time.Duration
}

// Do runs op under p and returns the last error when attempts are exhausted or
// the error is not retryable. Backoff waits end early when ctx is cancelled.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Exponential(DefaultBase, DefaultCap)
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || p.ShouldRetry == nil || !p.ShouldRetry(err) {
			return err
		}

		delay := backoff(attempt+1, err)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if ctxErr := sleep(ctx, delay); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
	}
}

// Exponential returns base·2^(attempt-1), capped at ceiling. A Retry-After hint on
// the error wins when it is longer.
func Exponential(base, ceiling time.Duration) func(attempt int, err error) time.Duration {
	return func(attempt int, err error) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
		if d > ceiling || d <= 0 {
			d = ceiling
		}
		var hint RetryAfterHinter
		if errors.As(err, &hint) {
			if ra := hint.RetryAfter(); ra > d {
				d = min(ra, ceiling)
			}
		}
		return d
	}
}

// Constant returns a backoff that always waits d. Useful in tests.
func Constant(d time.Duration) func(int, error) time.Duration {
	return func(int, error) time.Duration { return d }
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
