package trajectory

import (
	"context"
	"fmt"
	"testing"

	"patient-trajectory/internal/eventstore"
)

func TestIndexPatients(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	for i := 0; i < 7; i++ {
		store.Put(fmt.Sprintf("p%d", i), history(8, "Kontrola"))
	}

	e, idx := newTestEngine(store)

	n, err := e.IndexPatients(ctx, 3, 0)
	if err != nil {
		t.Fatalf("IndexPatients: %v", err)
	}
	if n != 7 {
		t.Errorf("indexed %d, want 7", n)
	}
	if idx.Len() != 7 {
		t.Errorf("index holds %d, want 7", idx.Len())
	}
}

// A second run finds nothing new to do.
func TestIndexPatientsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	store.Put("p1", history(8, "Kontrola"))

	e, idx := newTestEngine(store)

	if _, err := e.IndexPatients(ctx, 0, 0); err != nil {
		t.Fatalf("first run: %v", err)
	}
	n, err := e.IndexPatients(ctx, 0, 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n != 0 {
		t.Errorf("second run indexed %d, want 0", n)
	}
	if idx.Len() != 1 {
		t.Errorf("index holds %d, want 1", idx.Len())
	}
}

func TestIndexPatientsLimit(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	for i := 0; i < 5; i++ {
		store.Put(fmt.Sprintf("p%d", i), history(8, "Kontrola"))
	}

	e, idx := newTestEngine(store)

	n, err := e.IndexPatients(ctx, 0, 2)
	if err != nil {
		t.Fatalf("IndexPatients: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d, want 2", n)
	}
	if idx.Len() != 2 {
		t.Errorf("index holds %d, want 2", idx.Len())
	}
}

func TestIndexPatientsSkipsEmptyHistories(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	store.Put("empty", nil)
	store.Put("full", history(8, "Kontrola"))

	e, idx := newTestEngine(store)

	n, err := e.IndexPatients(ctx, 0, 0)
	if err != nil {
		t.Fatalf("IndexPatients: %v", err)
	}
	if n != 1 {
		t.Errorf("indexed %d, want 1", n)
	}
	if idx.Has("empty") {
		t.Error("patient with no events was indexed")
	}
}
