package wallabag

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Ensure PasswordAuthenticator implements the interface.
var _ driven.Authenticator = (*PasswordAuthenticator)(nil)

// TokenPath is the OAuth2 token endpoint relative to the server URL.
const TokenPath = "/oauth/v2/token"

// DefaultTokenLifetime is assumed when the server reports no expiry.
const DefaultTokenLifetime = time.Hour

// PasswordAuthenticator obtains bearer tokens with the OAuth2 password grant.
type PasswordAuthenticator struct {
	client *http.Client
}

// NewPasswordAuthenticator creates an authenticator that sends token requests
// through client. A nil client means http.DefaultClient.
func NewPasswordAuthenticator(client *http.Client) *PasswordAuthenticator {
	if client == nil {
		client = http.DefaultClient
	}
	return &PasswordAuthenticator{client: client}
}

// Authenticate exchanges the username and password for a token.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, creds domain.Credentials) (driven.Grant, error) {
	creds = creds.Normalized()
	if err := creds.Validate(); err != nil {
		return driven.Grant{}, err
	}

	tokenURL := creds.ServerURL + TokenPath
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	tok, err := cfg.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return driven.Grant{}, translateTokenError(tokenURL, err)
	}

	return driven.Grant{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn(tok),
	}, nil
}

// translateTokenError maps oauth2 failures onto the transport taxonomy.
func translateTokenError(tokenURL string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := http.StatusBadRequest
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &domain.TransportError{Status: status, Body: string(re.Body)}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.NetworkError{Op: http.MethodPost, URL: tokenURL, Err: err}
	}

	// A 2xx without access_token or an unparsable body
	return &domain.AuthError{Err: err}
}

// expiresIn reads expires_in from the raw response, falling back to the
// expiry oauth2 computed and then to DefaultTokenLifetime.
func expiresIn(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	if !tok.Expiry.IsZero() {
		if d := time.Until(tok.Expiry); d > 0 {
			return d
		}
	}
	return DefaultTokenLifetime
}
