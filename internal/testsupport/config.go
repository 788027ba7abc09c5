package testsupport

import (
	"path/filepath"
	"testing"

	"karaoke/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage defaults to a SQLite file inside the temp directory and the API
// binds an ephemeral port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Storage.SQLitePath = filepath.Join(base, "data", "queue.db")
	cfgVal.Queue.MaintenanceInterval = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDriver selects the storage driver.
func WithDriver(driver string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Driver = driver
	}
}

// WithAPIToken enables bearer authentication.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithRenumberGap overrides the queue renumber threshold.
func WithRenumberGap(gap float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.RenumberGap = gap
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
