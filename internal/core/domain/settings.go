package domain

import "time"

// Default setting values.
const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultMaxArticles     = 10
	DefaultFetchLimit      = 999
	DefaultRequestTimeout  = 30 * time.Second
	DefaultRequestsPerSec  = 5.0
	DefaultBurst           = 5
)

// Settings is the typed view of the key/value configuration source.
type Settings struct {
	Credentials Credentials

	// RefreshInterval is the poll period. Zero disables polling.
	RefreshInterval time.Duration

	// MaxArticles caps how many articles the UI shows.
	MaxArticles int

	// FetchLimit is the perPage value used when listing recent articles.
	FetchLimit int

	// ResaveOnFailure enables the delete-and-resave workaround on quick save.
	ResaveOnFailure bool

	Notifications NotificationSettings
	Buttons       ButtonSettings
	HTTP          HTTPSettings
}

// NotificationSettings toggles user-facing notifications.
// Error notifications are always shown.
type NotificationSettings struct {
	ShowInfo        bool
	ShowNewArticles bool
}

// ButtonSettings controls which per-article actions the UI offers.
type ButtonSettings struct {
	Archive   bool
	Star      bool
	Copy      bool
	Delete    bool
	EditTitle bool
}

// HTTPSettings configures the transport.
type HTTPSettings struct {
	// RequestsPerSecond throttles API calls. Zero or less disables throttling.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// DefaultSettings returns sensible defaults. Credentials are left empty.
func DefaultSettings() Settings {
	return Settings{
		RefreshInterval: DefaultRefreshInterval,
		MaxArticles:     DefaultMaxArticles,
		FetchLimit:      DefaultFetchLimit,
		ResaveOnFailure: true,
		Notifications: NotificationSettings{
			ShowInfo:        true,
			ShowNewArticles: true,
		},
		Buttons: ButtonSettings{
			Archive:   true,
			Star:      true,
			Copy:      true,
			Delete:    true,
			EditTitle: true,
		},
		HTTP: HTTPSettings{
			RequestsPerSecond: DefaultRequestsPerSec,
			Burst:             DefaultBurst,
			Timeout:           DefaultRequestTimeout,
		},
	}
}
