package driven

import "github.com/custodia-labs/wallapocket/internal/core/domain"

// TokenStore holds the current bearer token.
// It performs no I/O and does not judge expiry; callers compare
// Token.Expiry against their clock.
type TokenStore interface {
	// Token returns the stored token, if any.
	Token() (domain.Token, bool)

	// Store replaces the stored token.
	Store(token domain.Token)

	// Invalidate discards the stored token. Safe to call at any time.
	Invalidate()
}
