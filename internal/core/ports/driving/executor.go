package driving

import (
	"context"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// Executor performs authenticated API requests against the server.
//
// It acquires and reuses a bearer token, and on a 401 response invalidates
// the token and retries the request exactly once.
type Executor interface {
	// Do sends method to {server}/api{endpoint}. A non-nil body is sent as
	// JSON; a non-nil out receives the decoded JSON response.
	Do(ctx context.Context, method, endpoint string, body, out any) error

	// Reconfigure replaces the credentials and invalidates the token.
	Reconfigure(creds domain.Credentials)

	// Invalidate discards the current token.
	Invalidate()
}
