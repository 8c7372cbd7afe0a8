// Package retry wraps remote calls in an exponential-backoff policy.
// Failures are classified at the transport boundary into a structured Kind;
// only rate-limit failures are retried, everything else propagates
// immediately.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Kind classifies a remote-call failure.
type Kind int

const (
	// KindPermanent failures are never retried.
	KindPermanent Kind = iota
	// KindRateLimited failures are retried with exponential backoff.
	KindRateLimited
)

// Classifier decides the failure kind of an error. It runs where the raw
// transport error is received, so business logic never matches on error
// text.
type Classifier func(error) Kind

// Policy controls retry behavior for one unit of work.
type Policy struct {
	// MaxAttempts is the total attempt ceiling, including the first call.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; it doubles for each
	// further attempt.
	BaseDelay time.Duration
	// Classify decides whether a failure is retryable. A nil classifier
	// treats every failure as permanent.
	Classify Classifier
}

// Do runs fn under the policy. The unit string identifies the work in the
// wrapped error after the attempt ceiling is exhausted. Non-retryable
// failures are returned as-is after a single attempt.
func Do(ctx context.Context, p Policy, unit string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Classify == nil || p.Classify(lastErr) != KindRateLimited {
			return lastErr
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.BaseDelay << attempt
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", unit, p.MaxAttempts, lastErr)
}

// DoValue is Do for calls that produce a value.
func DoValue[T any](ctx context.Context, p Policy, unit string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, unit, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Cooldown sleeps for d unless the context ends first. Batch callers use it
// between successive successful calls to stay under a steady-state rate
// limit, independent of per-call retries.
func Cooldown(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
