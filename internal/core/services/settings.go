package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerURL       = "server.url"
	keyClientID        = "server.client_id"
	keyClientSecret    = "server.client_secret"
	keyUsername        = "server.username"
	keyPassword        = "server.password"
	keyRefreshInterval = "sync.refresh_interval"
	keyFetchLimit      = "sync.fetch_limit"
	keyMaxArticles     = "display.max_articles"
	keyShowArchive     = "display.show_archive_button"
	keyShowStar        = "display.show_star_button"
	keyShowCopy        = "display.show_copy_button"
	keyShowDelete      = "display.show_delete_button"
	keyShowEditTitle   = "display.show_edit_title_button"
	keyShowInfo        = "notifications.show_info"
	keyShowNew         = "notifications.show_new_articles"
	keyResave          = "save.resave_on_failure"
	keyRequestsPerSec  = "http.requests_per_second"
	keyBurst           = "http.burst"
	keyTimeout         = "http.timeout_seconds"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// knownKeys maps every setting key to the type it is stored as.
var knownKeys = map[string]valueKind{
	keyServerURL:       kindString,
	keyClientID:        kindString,
	keyClientSecret:    kindString,
	keyUsername:        kindString,
	keyPassword:        kindString,
	keyRefreshInterval: kindInt,
	keyFetchLimit:      kindInt,
	keyMaxArticles:     kindInt,
	keyShowArchive:     kindBool,
	keyShowStar:        kindBool,
	keyShowCopy:        kindBool,
	keyShowDelete:      kindBool,
	keyShowEditTitle:   kindBool,
	keyShowInfo:        kindBool,
	keyShowNew:         kindBool,
	keyResave:          kindBool,
	keyRequestsPerSec:  kindFloat,
	keyBurst:           kindInt,
	keyTimeout:         kindInt,
}

// SettingsService maps the key/value config store to domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Absent keys take their default.
func (s *SettingsService) Get() (domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := domain.Settings{
		Credentials: domain.Credentials{
			ServerURL:    s.configStore.GetString(keyServerURL),
			ClientID:     s.configStore.GetString(keyClientID),
			ClientSecret: s.configStore.GetString(keyClientSecret),
			Username:     s.configStore.GetString(keyUsername),
			Password:     s.configStore.GetString(keyPassword),
		}.Normalized(),
		RefreshInterval: time.Duration(s.getInt(keyRefreshInterval, int(defaults.RefreshInterval/time.Minute))) * time.Minute,
		MaxArticles:     s.getInt(keyMaxArticles, defaults.MaxArticles),
		FetchLimit:      s.getInt(keyFetchLimit, defaults.FetchLimit),
		ResaveOnFailure: s.getBool(keyResave, defaults.ResaveOnFailure),
		Notifications: domain.NotificationSettings{
			ShowInfo:        s.getBool(keyShowInfo, defaults.Notifications.ShowInfo),
			ShowNewArticles: s.getBool(keyShowNew, defaults.Notifications.ShowNewArticles),
		},
		Buttons: domain.ButtonSettings{
			Archive:   s.getBool(keyShowArchive, defaults.Buttons.Archive),
			Star:      s.getBool(keyShowStar, defaults.Buttons.Star),
			Copy:      s.getBool(keyShowCopy, defaults.Buttons.Copy),
			Delete:    s.getBool(keyShowDelete, defaults.Buttons.Delete),
			EditTitle: s.getBool(keyShowEditTitle, defaults.Buttons.EditTitle),
		},
		HTTP: domain.HTTPSettings{
			RequestsPerSecond: s.getFloat(keyRequestsPerSec, defaults.HTTP.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, defaults.HTTP.Burst),
			Timeout:           time.Duration(s.getInt(keyTimeout, int(defaults.HTTP.Timeout/time.Second))) * time.Second,
		},
	}

	if settings.RefreshInterval < 0 {
		return settings, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyRefreshInterval)
	}
	if settings.FetchLimit <= 0 {
		settings.FetchLimit = defaults.FetchLimit
	}
	if settings.HTTP.Timeout <= 0 {
		settings.HTTP.Timeout = defaults.HTTP.Timeout
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings domain.Settings) error {
	if err := s.SetCredentials(settings.Credentials); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyRefreshInterval, int(settings.RefreshInterval / time.Minute)},
		{keyFetchLimit, settings.FetchLimit},
		{keyMaxArticles, settings.MaxArticles},
		{keyResave, settings.ResaveOnFailure},
		{keyShowInfo, settings.Notifications.ShowInfo},
		{keyShowNew, settings.Notifications.ShowNewArticles},
		{keyShowArchive, settings.Buttons.Archive},
		{keyShowStar, settings.Buttons.Star},
		{keyShowCopy, settings.Buttons.Copy},
		{keyShowDelete, settings.Buttons.Delete},
		{keyShowEditTitle, settings.Buttons.EditTitle},
		{keyRequestsPerSec, settings.HTTP.RequestsPerSecond},
		{keyBurst, settings.HTTP.Burst},
		{keyTimeout, int(settings.HTTP.Timeout / time.Second)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetCredentials replaces the server credentials.
func (s *SettingsService) SetCredentials(creds domain.Credentials) error {
	creds = creds.Normalized()
	values := []struct {
		key   string
		value string
	}{
		{keyServerURL, creds.ServerURL},
		{keyClientID, creds.ClientID},
		{keyClientSecret, creds.ClientSecret},
		{keyUsername, creds.Username},
		{keyPassword, creds.Password},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = strings.TrimSpace(value)
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = b
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the known setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSecret reports whether the key holds a secret that should not be printed.
func (s *SettingsService) IsSecret(key string) bool {
	return key == keyPassword || key == keyClientSecret
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
