package driven

// ConfigStore persists CLI configuration (default database path, journal
// mode, codec choice).
type ConfigStore interface {
	// Get retrieves a configuration value by dot-notation key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when absent.
	GetString(key string) string

	// GetBool retrieves a boolean value, or false when absent.
	GetBool(key string) bool

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Path returns the backing file path.
	Path() string
}
