package services

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/likesync/internal/shared"
)

// RetryPolicy decides how many times an upstream request is attempted and how long to wait in between.
//
// The zero value (and any MaxAttempts <= 1) performs a single attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// NoRetry is the single-attempt policy.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// ExponentialBackoff doubles base for every attempt after the first, capped at limit.
func ExponentialBackoff(base, limit time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= limit {
				return limit
			}
		}
		return min(d, limit)
	}
}

// Retryable reports whether err is a transport failure or a 429/5xx response.
//
// Context cancellation, other 4xx responses and decode failures are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, shared.ErrNetwork) {
		return true
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Temporary()
	}
	return false
}

// Do runs op until it succeeds, returns a final error, or the attempts are exhausted.
//
// The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, op func(attempt int) error) error {
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(attempt); err == nil {
			return nil
		}
		if attempt == attempts || !Retryable(err) || ctx.Err() != nil {
			return err
		}
		if serr := p.sleep(ctx, p.delay(attempt, err)); serr != nil {
			return err
		}
	}
	return err
}

// delay honours a Retry-After header when the upstream sent one.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if apiErr, ok := AsAPIError(err); ok && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
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
