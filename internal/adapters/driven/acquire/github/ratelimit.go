package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// AuthenticatedLimit is the hourly quota for token-authenticated
	// requests.
	AuthenticatedLimit = 5000

	// UnauthenticatedLimit is the hourly quota without a token.
	UnauthenticatedLimit = 60

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec).
	ProactiveRate = 1.2

	// MinBuffer is the minimum remaining requests before waiting for
	// quota reset.
	MinBuffer = 10

	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// rateLimiter throttles GitHub API calls with a token bucket and backs
// off when the reported remaining quota runs low.
type rateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

func newRateLimiter(authenticated bool) *rateLimiter {
	quota := UnauthenticatedLimit
	if authenticated {
		quota = AuthenticatedLimit
	}
	return &rateLimiter{
		remaining: quota,
		bucket:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it is safe to make a request.
func (r *rateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < MinBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// Update records the quota headers from an API response.
func (r *rateLimiter) Update(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get(headerRateRemaining); v != "" {
		if remaining, err := strconv.Atoi(v); err == nil {
			r.remaining = remaining
		}
	}
	if v := resp.Header.Get(headerRateReset); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(unix, 0)
		}
	}
}
