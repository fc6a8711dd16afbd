package eventstore

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"patient-trajectory/internal/events"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	in := []events.Event{
		{DayOffset: 5, Category: events.CategoryProcedure, Label: "Vyšetření",
			Detail: map[string]any{"department": "Kardiologie"}},
		{DayOffset: 1, Category: events.CategoryMedication, Label: "Paracetamol"},
	}
	if err := s.AddEvents(ctx, "p1", in); err != nil {
		t.Fatalf("AddEvents: %v", err)
	}

	got, err := s.GetEvents(ctx, "p1")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events", len(got))
	}
	// Returned ordered by day offset regardless of insertion order.
	if got[0].Label != "Paracetamol" || got[1].Label != "Vyšetření" {
		t.Errorf("wrong order: %v", got)
	}
	if got[0].Category != events.CategoryMedication {
		t.Errorf("category = %s", got[0].Category)
	}
	if got[1].Department() != "Kardiologie" {
		t.Errorf("detail lost: %v", got[1].Detail)
	}
}

func TestSQLiteUnknownPatient(t *testing.T) {
	s := openTestSQLite(t)
	got, err := s.GetEvents(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown patient returned events: %v", got)
	}
}

func TestSQLiteBatchAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	s.AddEvents(ctx, "p2", []events.Event{{DayOffset: 1, Category: events.CategoryProcedure, Label: "b"}})
	s.AddEvents(ctx, "p1", []events.Event{{DayOffset: 1, Category: events.CategoryProcedure, Label: "a"}})

	batch, err := s.GetEventsBatch(ctx, []string{"p1", "p2", "missing"})
	if err != nil {
		t.Fatalf("GetEventsBatch: %v", err)
	}
	if len(batch) != 2 || batch["p1"][0].Label != "a" || batch["p2"][0].Label != "b" {
		t.Errorf("batch = %v", batch)
	}

	ids, err := s.ListPatientIDs(ctx)
	if err != nil {
		t.Fatalf("ListPatientIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"p1", "p2"}) {
		t.Errorf("ListPatientIDs = %v", ids)
	}
}

func TestSQLiteBatchEmptyInput(t *testing.T) {
	s := openTestSQLite(t)
	batch, err := s.GetEventsBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetEventsBatch: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("batch = %v", batch)
	}
}

func TestSQLiteCodes(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	if err := s.PutCode(ctx, "0000123", "Paracetamol"); err != nil {
		t.Fatalf("PutCode: %v", err)
	}
	// Upsert replaces.
	if err := s.PutCode(ctx, "0000123", "Paralen"); err != nil {
		t.Fatalf("PutCode: %v", err)
	}

	codes, err := s.LoadCodes(ctx)
	if err != nil {
		t.Fatalf("LoadCodes: %v", err)
	}
	if codes["0000123"] != "Paralen" {
		t.Errorf("LoadCodes = %v", codes)
	}
}

// Raw category strings normalize at the read boundary.
func TestSQLiteNormalizesCategories(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	s.AddEvents(ctx, "p1", []events.Event{{DayOffset: 1, Category: "weird", Label: "x"}})

	got, err := s.GetEvents(ctx, "p1")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if got[0].Category != events.CategoryUnknown {
		t.Errorf("category = %s, want UNKNOWN", got[0].Category)
	}
}
