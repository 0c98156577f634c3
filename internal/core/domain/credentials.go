package domain

import (
	"strings"
	"time"
)

// Credentials identify the user against the read-later server.
// They are immutable for a session; a settings change replaces them and
// invalidates the current Token.
type Credentials struct {
	// ServerURL is the base URL of the server, without trailing slash.
	ServerURL string `json:"server_url"`
	// ClientID is the OAuth client identifier created in the server's API clients page.
	ClientID string `json:"client_id"`
	// ClientSecret is the OAuth client secret.
	ClientSecret string `json:"client_secret"`
	// Username is the account login.
	Username string `json:"username"`
	// Password is the account password.
	Password string `json:"password"`
}

// Normalized returns a copy with surrounding whitespace and the trailing
// slash of ServerURL removed.
func (c Credentials) Normalized() Credentials {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.Username = strings.TrimSpace(c.Username)
	return c
}

// Validate returns a *ConfigError for the first empty field.
func (c Credentials) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"server-url", c.ServerURL},
		{"client-id", c.ClientID},
		{"client-secret", c.ClientSecret},
		{"username", c.Username},
		{"password", c.Password},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ConfigError{Field: f.name}
		}
	}
	return nil
}

// IsComplete returns true if every field is set.
func (c Credentials) IsComplete() bool {
	return c.Validate() == nil
}

// Token is a bearer token with its absolute expiry.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// Valid reports whether the token may be used at instant now.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.Expiry)
}
