package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

// Ensure Executor implements the interface.
var _ driving.Executor = (*Executor)(nil)

// apiPrefix is prepended to every endpoint.
const apiPrefix = "/api"

// Executor sends authenticated requests to the server.
type Executor struct {
	transport driven.Transport
	auth      driven.Authenticator
	tokens    driven.TokenStore
	clock     driven.Clock

	mu    sync.RWMutex
	creds domain.Credentials
	// generation changes on every Reconfigure so a login that started with
	// old credentials does not overwrite the store.
	generation uint64

	logins singleflight.Group
}

// NewExecutor creates an executor. A nil clock means the system clock.
func NewExecutor(
	transport driven.Transport,
	auth driven.Authenticator,
	tokens driven.TokenStore,
	clock driven.Clock,
	creds domain.Credentials,
) *Executor {
	if clock == nil {
		clock = driven.SystemClock
	}
	return &Executor{
		transport: transport,
		auth:      auth,
		tokens:    tokens,
		clock:     clock,
		creds:     creds.Normalized(),
	}
}

// Do sends an authenticated request and decodes the JSON response into out.
func (e *Executor) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, endpoint, err)
		}
	}

	resp, err := e.send(ctx, method, endpoint, payload)
	if domain.IsUnauthorized(err) {
		logger.Debug("Token rejected for %s %s, re-authenticating", method, endpoint)
		e.tokens.Invalidate()

		resp, err = e.send(ctx, method, endpoint, payload)
		if domain.IsUnauthorized(err) {
			return &domain.AuthError{Err: err}
		}
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(resp)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// Reconfigure replaces the credentials and invalidates the token.
func (e *Executor) Reconfigure(creds domain.Credentials) {
	e.mu.Lock()
	e.creds = creds.Normalized()
	e.generation++
	e.mu.Unlock()

	e.tokens.Invalidate()
}

// Invalidate discards the current token.
func (e *Executor) Invalidate() {
	e.tokens.Invalidate()
}

// send performs one attempt: acquire a token, then issue the request.
func (e *Executor) send(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	creds, gen := e.snapshot()

	token, err := e.token(ctx, creds, gen)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", "application/json")
	if payload != nil {
		header.Set("Content-Type", "application/json")
	}

	return e.transport.Send(ctx, driven.Request{
		Method: method,
		URL:    creds.ServerURL + apiPrefix + endpoint,
		Header: header,
		Body:   payload,
	})
}

// token returns a valid access token, authenticating when the store holds
// none. Concurrent callers share a single login.
func (e *Executor) token(ctx context.Context, creds domain.Credentials, gen uint64) (string, error) {
	if tok, ok := e.tokens.Token(); ok && tok.Valid(e.clock.Now()) {
		return tok.AccessToken, nil
	}

	if err := creds.Validate(); err != nil {
		return "", err
	}

	v, err, _ := e.logins.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		if tok, ok := e.tokens.Token(); ok && tok.Valid(e.clock.Now()) {
			return tok, nil
		}

		logger.Debug("Authenticating %s against %s", creds.Username, creds.ServerURL)
		grant, err := e.auth.Authenticate(ctx, creds)
		if err != nil {
			return domain.Token{}, err
		}
		if grant.AccessToken == "" {
			return domain.Token{}, &domain.AuthError{Err: errors.New("token response has no access_token")}
		}

		logger.Redact(grant.AccessToken)
		tok := domain.Token{
			AccessToken: grant.AccessToken,
			Expiry:      e.clock.Now().Add(grant.ExpiresIn),
		}
		if _, current := e.snapshot(); current == gen {
			e.tokens.Store(tok)
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(domain.Token).AccessToken, nil
}

func (e *Executor) snapshot() (domain.Credentials, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.creds, e.generation
}
