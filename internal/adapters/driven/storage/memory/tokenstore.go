package memory

import (
	"sync"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the bearer token in memory. Tokens are never persisted.
type TokenStore struct {
	mu    sync.RWMutex
	token domain.Token
	ok    bool
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Token returns the stored token, if any.
func (s *TokenStore) Token() (domain.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.ok
}

// Store replaces the stored token.
func (s *TokenStore) Store(token domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.ok = token.AccessToken != ""
}

// Invalidate discards the stored token.
func (s *TokenStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = domain.Token{}
	s.ok = false
}
