package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.DSN != "trajectory.db" {
		t.Errorf("default store = %+v", cfg.Store)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q", cfg.LogLevel)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectory.yaml")
	data := `
store:
  backend: postgres
  dsn: postgres://localhost/clinical
index:
  tier_threshold: 500
profile:
  max_length: 1200
log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Index.TierThreshold != 500 {
		t.Errorf("tier threshold = %d", cfg.Index.TierThreshold)
	}
	if cfg.Profile.MaxLength != 1200 {
		t.Errorf("max length = %d", cfg.Profile.MaxLength)
	}
	// Unset fields keep defaults.
	if cfg.Index.Dir != ".trajectory" {
		t.Errorf("index dir = %q", cfg.Index.Dir)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectory.yaml")
	os.WriteFile(path, []byte("store:\n  backend: oracle\n"), 0o644)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectory.yaml")
	os.WriteFile(path, []byte("store: [not a map"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
