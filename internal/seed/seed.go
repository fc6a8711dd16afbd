package seed

import (
	"context"
	"fmt"
	"math/rand"

	"patient-trajectory/internal/events"
)

// EventWriter is the writable store surface the seeder needs.
type EventWriter interface {
	ListPatientIDs(ctx context.Context) ([]string, error)
	AddEvents(ctx context.Context, patientID string, evts []events.Event) error
	PutCode(ctx context.Context, code, name string) error
}

// Seeder populates a store with a synthetic cohort.
type Seeder struct {
	store EventWriter
}

// NewSeeder creates a Seeder writing to the given store.
func NewSeeder(s EventWriter) *Seeder {
	return &Seeder{store: s}
}

// Result reports what the seeder did.
type Result struct {
	Added   []string // IDs of newly created patients
	Skipped []string // IDs that already existed
	Total   int      // cohort size requested
}

// SeedCohort ensures count synthetic patients exist. It is idempotent:
// patients already in the store are skipped, never regenerated, so demo
// predictions stay stable across runs. seed fixes the generated histories.
func (s *Seeder) SeedCohort(ctx context.Context, count int, seed int64) (*Result, error) {
	existing, err := s.store.ListPatientIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing existing patients: %w", err)
	}
	present := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		present[id] = struct{}{}
	}

	rng := rand.New(rand.NewSource(seed))
	kinds := archetypes()
	result := &Result{Total: count}

	for i := 0; i < count; i++ {
		arch := kinds[i%len(kinds)]
		pid := fmt.Sprintf("demo-%s-%03d", arch.name, i)

		if _, ok := present[pid]; ok {
			result.Skipped = append(result.Skipped, pid)
			// Keep the stream position so skipping does not reshuffle
			// the histories of later patients.
			arch.build(rng)
			continue
		}

		if err := s.store.AddEvents(ctx, pid, events.SortedByDay(arch.build(rng))); err != nil {
			return nil, fmt.Errorf("seeding patient %s: %w", pid, err)
		}
		result.Added = append(result.Added, pid)
	}

	for code, name := range demoCodes() {
		if err := s.store.PutCode(ctx, code, name); err != nil {
			return nil, fmt.Errorf("seeding code %s: %w", code, err)
		}
	}

	return result, nil
}
