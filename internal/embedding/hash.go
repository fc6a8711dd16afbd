package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashProvider is a deterministic, model-free embedding provider. It
// feature-hashes whitespace tokens into a fixed-dimension bag-of-words
// vector and L2-normalizes it, so cosine similarity degrades to token
// overlap. It is nowhere near a semantic model; it exists so the engine
// and tests run without a GGUF file, and its determinism is what makes the
// corpus-level tests reproducible.
type HashProvider struct {
	dim int
}

// NewHashProvider creates a HashProvider with the given dimension.
// Non-positive dimensions fall back to 256.
func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = 256
	}
	return &HashProvider{dim: dim}
}

// Embed hashes tokens of text into a normalized vector.
func (p *HashProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dim)
	for _, tok := range strings.Fields(strings.ToUpper(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(p.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the configured vector length.
func (p *HashProvider) Dimension() int {
	return p.dim
}
