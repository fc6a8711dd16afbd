//go:build !llamacpp

package main

import (
	"patient-trajectory/internal/config"
	"patient-trajectory/internal/embedding"
)

// newProvider returns the deterministic hash embedder. Builds with the
// llamacpp tag swap in the local GGUF model when one is configured.
func newProvider(cfg config.EmbeddingConfig) embedding.Provider {
	return embedding.NewHashProvider(cfg.Dimension)
}
