// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"shuttle/internal/config"
	"shuttle/internal/queue"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DestinationDir = filepath.Join(base, "destination")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	// Keep backoff and polling snappy so tests never sleep for real.
	cfg.Workflow.QueuePollIntervalMS = 10
	cfg.Workflow.RetryDelayMS = 5
	return &cfg
}

// MustOpenStore opens a queue store for the test config and closes it on
// cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open queue store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
