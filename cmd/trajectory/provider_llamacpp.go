//go:build llamacpp

package main

import (
	"patient-trajectory/internal/config"
	"patient-trajectory/internal/embedding"
)

// newProvider returns the local GGUF embedder when a model path is
// configured, otherwise the deterministic hash embedder.
func newProvider(cfg config.EmbeddingConfig) embedding.Provider {
	if cfg.ModelPath == "" {
		return embedding.NewHashProvider(cfg.Dimension)
	}
	return embedding.NewLocalProvider(embedding.LocalConfig{
		ModelPath: cfg.ModelPath,
		GPULayers: cfg.GPULayers,
	})
}
