package vectorindex

import (
	"context"
	"sort"
	"sync"

	"patient-trajectory/internal/vecmath"
)

// BruteForceIndex performs exhaustive nearest neighbor search using cosine
// similarity. Thread-safe. Suitable for cohorts up to a few thousand
// patients; the tiered index promotes past that.
type BruteForceIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewBruteForceIndex creates an empty BruteForceIndex.
func NewBruteForceIndex() *BruteForceIndex {
	return &BruteForceIndex{
		vectors: make(map[string][]float32),
	}
}

// Upsert inserts or replaces the vector for the given patient ID.
func (b *BruteForceIndex) Upsert(_ context.Context, patientID string, vector []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]float32, len(vector))
	copy(cp, vector)
	b.vectors[patientID] = cp
	return nil
}

// Remove deletes the vector for the given patient ID. No-op if not found.
func (b *BruteForceIndex) Remove(_ context.Context, patientID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.vectors, patientID)
	return nil
}

// Search returns the topK most similar vectors to query, sorted by
// descending score.
func (b *BruteForceIndex) Search(_ context.Context, query []float32, topK int) ([]Result, error) {
	if len(query) == 0 || topK <= 0 {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.vectors) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(b.vectors))
	for id, vec := range b.vectors {
		results = append(results, Result{
			PatientID: id,
			Score:     vecmath.CosineSimilarity(query, vec),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PatientID < results[j].PatientID
	})

	if topK > len(results) {
		topK = len(results)
	}

	return results[:topK], nil
}

// Has reports whether a vector is stored for the given patient ID.
func (b *BruteForceIndex) Has(patientID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.vectors[patientID]
	return ok
}

// IDs returns the stored patient IDs in no particular order.
func (b *BruteForceIndex) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.vectors))
	for id := range b.vectors {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of vectors in the index.
func (b *BruteForceIndex) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vectors)
}

// Save is a no-op for the in-memory brute-force index.
func (b *BruteForceIndex) Save(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory brute-force index.
func (b *BruteForceIndex) Close() error {
	return nil
}

var _ Index = (*BruteForceIndex)(nil)
