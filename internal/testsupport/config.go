package testsupport

import (
	"testing"

	"github.com/ymgan/obis-qc/internal/config"
)

// NewConfig returns a validated configuration rooted in temporary
// directories, suitable for tests that touch the cache or CLI.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.Check.Workers = 2
	cfg.Worms.RetryMaxAttempts = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
