// Package retry provides an explicit retry policy for collaborator
// calls. Services stay retry-agnostic: the policy wraps the call, and
// tests inject a zero-retry policy.
package retry

import (
	"context"
	"time"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// Policy describes how transient collaborator failures are retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// Backoff multiplies the delay after each failed attempt.
	Backoff float64
}

// Default is the policy used for embedding gateway calls.
var Default = Policy{MaxAttempts: 3, Delay: time.Second, Backoff: 2}

// None performs a single attempt with no retries.
var None = Policy{MaxAttempts: 1}

// Do runs fn, retrying transient failures per the policy. Permanent
// failures and context cancellation return immediately. The last error
// is returned when all attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !domain.IsTransient(err) || attempt == attempts {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if p.Backoff > 0 {
			delay = time.Duration(float64(delay) * p.Backoff)
		}
	}
	return err
}
