// Package config loads the YAML configuration for the trajectory tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the event store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend string `yaml:"backend"`

	// DSN is the database path (sqlite) or connection string (postgres).
	DSN string `yaml:"dsn"`
}

// IndexConfig configures the vector index.
type IndexConfig struct {
	// Dir is where the index persists its graph. Empty = in-memory only.
	Dir string `yaml:"dir"`

	// TierThreshold is the patient count at which the index promotes
	// from brute-force to HNSW. 0 uses the default.
	TierThreshold int `yaml:"tier_threshold"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// ModelPath points to a GGUF embedding model. Empty selects the
	// deterministic hash provider.
	ModelPath string `yaml:"model_path"`

	// Dimension is the hash provider's vector length.
	Dimension int `yaml:"dimension"`

	// GPULayers offloads model layers to GPU (0 = CPU only).
	GPULayers int `yaml:"gpu_layers"`
}

// ProfileConfig tunes the linearizer.
type ProfileConfig struct {
	MaxLength      int `yaml:"max_length"`
	RecentEvents   int `yaml:"recent_events"`
	TopDepartments int `yaml:"top_departments"`
	TopCritical    int `yaml:"top_critical"`
	QueryWindow    int `yaml:"query_window"`
}

// Config is the root configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Profile   ProfileConfig   `yaml:"profile"`
	LogLevel  string          `yaml:"log_level"`
}

// Default returns the configuration used when no file is present: an
// embedded SQLite store and the hash embedding provider.
func Default() Config {
	return Config{
		Store:    StoreConfig{Backend: "sqlite", DSN: "trajectory.db"},
		Index:    IndexConfig{Dir: ".trajectory"},
		LogLevel: "info",
	}
}

// Load reads a YAML config from path. A missing file yields Default();
// a malformed file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Store.Backend != "sqlite" && cfg.Store.Backend != "postgres" {
		return Config{}, fmt.Errorf("config %s: unknown store backend %q", path, cfg.Store.Backend)
	}
	return cfg, nil
}
