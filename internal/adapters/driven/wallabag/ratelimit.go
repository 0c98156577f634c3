package wallabag

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// DefaultBackoff applies when a 429 carries no usable Retry-After.
	DefaultBackoff = 30 * time.Second

	// MaxBackoff caps a server-requested pause.
	MaxBackoff = 10 * time.Minute
)

// RateLimiter throttles requests with a token bucket and honours the
// back-off requested by 429 responses. Back-off is tracked per host.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter // nil disables proactive throttling
	retryAt map[string]time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter. requestsPerSecond <= 0 disables the
// token bucket; 429 back-off still applies.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := &RateLimiter{retryAt: make(map[string]time.Time), now: time.Now}
	if requestsPerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return r
}

// Wait blocks until a request to host may be sent.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	retryAt := r.RetryAt(host)

	if wait := retryAt.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimit sets the back-off for host from a Retry-After header value.
func (r *RateLimiter) RecordRateLimit(host, retryAfter string) {
	now := r.now()
	wait := parseRetryAfter(retryAfter, now)
	if wait <= 0 {
		wait = DefaultBackoff
	}
	if wait > MaxBackoff {
		wait = MaxBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt[host] = now.Add(wait)
}

// RetryAt returns the end of the back-off for host, zero if none was recorded.
func (r *RateLimiter) RetryAt(host string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt[host]
}

func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now)
	}
	return 0
}

// throttledRoundTripper applies a RateLimiter to every request.
type throttledRoundTripper struct {
	base    http.RoundTripper
	limiter *RateLimiter
}

func (t *throttledRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		t.limiter.RecordRateLimit(req.URL.Host, resp.Header.Get(HeaderRetryAfter))
	}
	return resp, nil
}
