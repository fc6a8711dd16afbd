// Package embedding turns profile strings into fixed-length numeric
// vectors. The model itself is an opaque capability; this package only
// defines the contract and two providers.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbedding indicates the embedding provider failed hard. It propagates
// to the caller; the core never substitutes a zero vector for a failure.
var ErrEmbedding = errors.New("embedding failure")

// Provider turns text into fixed-dimension vectors. Implementations must
// return vectors of a stable dimension for the lifetime of the process.
type Provider interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in order. Batch calls
	// exist to amortize model overhead during bulk indexing.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector length this provider produces.
	Dimension() int
}
