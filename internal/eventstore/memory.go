// Package eventstore provides Store adapters over Postgres, SQLite, and
// memory. All adapters return histories sorted ascending by day offset
// and wrap hard failures with events.ErrUnavailable.
package eventstore

import (
	"context"
	"sort"
	"sync"

	"patient-trajectory/internal/events"
)

// MemoryStore is an in-memory Store for tests and demos. Thread-safe.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[string][]events.Event
	codes    map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients: make(map[string][]events.Event),
		codes:    make(map[string]string),
	}
}

// Put replaces one patient's history. The input is copied and stored
// sorted by day offset.
func (m *MemoryStore) Put(patientID string, evts []events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[patientID] = events.SortedByDay(evts)
}

// PutCode registers a code-to-name mapping.
func (m *MemoryStore) PutCode(code, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = name
}

// GetEvents returns the ordered history for one patient, nil if unknown.
func (m *MemoryStore) GetEvents(_ context.Context, patientID string) ([]events.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evts := m.patients[patientID]
	out := make([]events.Event, len(evts))
	copy(out, evts)
	return out, nil
}

// GetEventsBatch returns ordered histories for several patients.
func (m *MemoryStore) GetEventsBatch(ctx context.Context, patientIDs []string) (map[string][]events.Event, error) {
	out := make(map[string][]events.Event, len(patientIDs))
	for _, pid := range patientIDs {
		evts, err := m.GetEvents(ctx, pid)
		if err != nil {
			return nil, err
		}
		if len(evts) > 0 {
			out[pid] = evts
		}
	}
	return out, nil
}

// ListPatientIDs returns all known patient IDs, sorted for determinism.
func (m *MemoryStore) ListPatientIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.patients))
	for id := range m.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadCodes returns the registered code-to-name mapping.
func (m *MemoryStore) LoadCodes(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.codes))
	for k, v := range m.codes {
		out[k] = v
	}
	return out, nil
}

var _ events.Store = (*MemoryStore)(nil)
