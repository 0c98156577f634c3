package driven

// ConfigStore is the key/value settings source. Keys use dot notation
// ("server.url", "sync.refresh_interval"). Typed getters return the zero
// value for absent keys and for values of another type; callers that need
// to tell the two apart use Get.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error
	Save() error
	// Load replaces the in-memory values with the persisted ones.
	Load() error

	// Path identifies the backing file, for messages.
	Path() string
}
