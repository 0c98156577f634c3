package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

// Grant is the result of a successful password grant.
type Grant struct {
	AccessToken string
	// ExpiresIn is the lifetime reported by the server.
	ExpiresIn time.Duration
}

// Authenticator performs the OAuth2 password grant.
// Errors follow the Transport taxonomy.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (Grant, error)
}
