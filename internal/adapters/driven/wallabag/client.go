package wallabag

import (
	"net/http"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// NewHTTPClient builds a client throttled and bounded by settings. Each call
// gets its own RateLimiter, so clients never share a back-off.
func NewHTTPClient(settings domain.HTTPSettings) *http.Client {
	limiter := NewRateLimiter(settings.RequestsPerSecond, settings.Burst)

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &throttledRoundTripper{
			base:    http.DefaultTransport.(*http.Transport).Clone(),
			limiter: limiter,
		},
	}
}
