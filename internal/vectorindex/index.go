// Package vectorindex provides nearest neighbor search over patient
// profile embeddings: one vector per patient ID.
package vectorindex

import (
	"context"
	"errors"
)

// ErrIndex indicates the vector index failed hard (corrupt persistence,
// unwritable directory). It propagates to the caller.
var ErrIndex = errors.New("vector index failure")

// Result pairs a patient ID with its cosine similarity score.
type Result struct {
	PatientID string
	Score     float64 // cosine similarity in [-1, 1], higher = more similar
}

// Index provides nearest neighbor search over patient embeddings.
// Implementations must be safe for concurrent use from multiple goroutines.
type Index interface {
	// Upsert inserts or replaces the vector for the given patient ID.
	// Re-upserting the same ID replaces the stored vector, so indexing
	// runs are idempotent.
	Upsert(ctx context.Context, patientID string, vector []float32) error

	// Remove deletes the vector for the given patient ID.
	// Returns nil if the ID does not exist (idempotent).
	Remove(ctx context.Context, patientID string) error

	// Search returns the topK most similar vectors to query, sorted by
	// descending score. Returns fewer than topK results if the index
	// contains fewer vectors.
	Search(ctx context.Context, query []float32, topK int) ([]Result, error)

	// Has reports whether a vector is stored for the given patient ID.
	Has(patientID string) bool

	// IDs returns the patient IDs currently in the index, in no
	// particular order. Used by the evaluation harness to sample the
	// indexed population.
	IDs() []string

	// Len returns the number of vectors currently in the index.
	Len() int

	// Save persists the index state to its backing store.
	// Implementations without persistence should no-op.
	Save(ctx context.Context) error

	// Close releases resources. Implementations should save before closing.
	Close() error
}
