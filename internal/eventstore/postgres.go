package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"patient-trajectory/internal/events"
)

// OpenPostgres opens a connection pool to Postgres using pgx through
// database/sql.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// PostgresStore reads patient events from the patient_events table and the
// code registry from code_names.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetEvents returns one patient's history ordered by day offset.
func (s *PostgresStore) GetEvents(ctx context.Context, patientID string) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_offset, category, label, detail
		FROM patient_events
		WHERE patient_id = $1
		ORDER BY day_offset, id
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events for %s: %v", events.ErrUnavailable, patientID, err)
	}
	defer rows.Close()

	evts, err := scanEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: reading events for %s: %v", events.ErrUnavailable, patientID, err)
	}
	return evts, nil
}

// GetEventsBatch returns ordered histories for several patients in one
// query. Patients without events are absent from the map.
func (s *PostgresStore) GetEventsBatch(ctx context.Context, patientIDs []string) (map[string][]events.Event, error) {
	if len(patientIDs) == 0 {
		return map[string][]events.Event{}, nil
	}

	placeholders := make([]string, len(patientIDs))
	args := make([]any, len(patientIDs))
	for i, pid := range patientIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = pid
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, day_offset, category, label, detail
		FROM patient_events
		WHERE patient_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY patient_id, day_offset, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying event batch: %v", events.ErrUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string][]events.Event, len(patientIDs))
	for rows.Next() {
		var (
			pid       string
			dayOffset int
			category  string
			label     string
			detail    []byte
		)
		if err := rows.Scan(&pid, &dayOffset, &category, &label, &detail); err != nil {
			return nil, fmt.Errorf("%w: scanning event batch: %v", events.ErrUnavailable, err)
		}
		out[pid] = append(out[pid], newEvent(dayOffset, category, label, detail))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading event batch: %v", events.ErrUnavailable, err)
	}
	return out, nil
}

// ListPatientIDs returns the distinct patient IDs present in the store.
func (s *PostgresStore) ListPatientIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT patient_id FROM patient_events ORDER BY patient_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing patients: %v", events.ErrUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning patient id: %v", events.ErrUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing patients: %v", events.ErrUnavailable, err)
	}
	return ids, nil
}

// LoadCodes returns the code-to-name registry. Callers treat failure as
// degradable (profile.LoadDictionary), so errors are returned unwrapped.
func (s *PostgresStore) LoadCodes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM code_names`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		codes[code] = name
	}
	return codes, rows.Err()
}

// scanEvents consumes rows of (day_offset, category, label, detail).
func scanEvents(rows *sql.Rows) ([]events.Event, error) {
	var evts []events.Event
	for rows.Next() {
		var (
			dayOffset int
			category  string
			label     string
			detail    []byte
		)
		if err := rows.Scan(&dayOffset, &category, &label, &detail); err != nil {
			return nil, err
		}
		evts = append(evts, newEvent(dayOffset, category, label, detail))
	}
	return evts, rows.Err()
}

// newEvent normalizes a raw row into an Event: the category becomes a
// tagged enum and the detail JSON a map, right at the boundary.
func newEvent(dayOffset int, category, label string, detail []byte) events.Event {
	e := events.Event{
		DayOffset: dayOffset,
		Category:  events.ParseCategory(category),
		Label:     label,
	}
	if len(detail) > 0 {
		var m map[string]any
		if err := json.Unmarshal(detail, &m); err == nil {
			e.Detail = m
		}
	}
	return e
}

var _ events.Store = (*PostgresStore)(nil)
