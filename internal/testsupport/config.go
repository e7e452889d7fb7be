package testsupport

import (
	"path/filepath"
	"testing"

	"refcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Catalog.UserKey = "test-key"
	cfg.Catalog.RequestTimeout = 5
	cfg.Output.Dir = filepath.Join(base, "output")
	cfg.Output.RegistryPath = filepath.Join(base, "oid_dictionary.json")
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.Logging.Dir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithUserKey sets the catalog access token on the test config.
func WithUserKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.UserKey = key
	}
}

// WithHistoryDisabled turns off the fetch-history store.
func WithHistoryDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = false
	}
}
