package driving

import "github.com/custodia-labs/wallapocket/internal/core/domain"

// SettingsService reads and writes the typed settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (domain.Settings, error)

	// Save persists settings.
	Save(settings domain.Settings) error

	// SetCredentials replaces the server credentials.
	SetCredentials(creds domain.Credentials) error

	// Set stores a single key after validating it is a known setting.
	Set(key, value string) error

	// Keys lists the known setting keys.
	Keys() []string

	// IsSecret reports whether the key holds a value that must not be echoed.
	IsSecret(key string) bool
}
