package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"patient-trajectory/internal/events"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS patient_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id TEXT NOT NULL,
	day_offset INTEGER NOT NULL,
	category   TEXT NOT NULL,
	label      TEXT NOT NULL,
	detail     TEXT
);
CREATE INDEX IF NOT EXISTS idx_patient_events_patient
	ON patient_events (patient_id, day_offset);

CREATE TABLE IF NOT EXISTS code_names (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
`

// SQLiteStore reads patient events from an embedded SQLite database.
// Useful for local runs and fixtures without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite event store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddEvents appends events to a patient's history. Fixture loading only;
// the query path never writes.
func (s *SQLiteStore) AddEvents(ctx context.Context, patientID string, evts []events.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patient_events (patient_id, day_offset, category, label, detail)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range evts {
		var detail []byte
		if e.Detail != nil {
			detail, _ = json.Marshal(e.Detail)
		}
		if _, err := stmt.ExecContext(ctx, patientID, e.DayOffset, string(e.Category), e.Label, detail); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PutCode registers a code-to-name mapping.
func (s *SQLiteStore) PutCode(ctx context.Context, code, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO code_names (code, name) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name
	`, code, name)
	return err
}

// GetEvents returns one patient's history ordered by day offset.
func (s *SQLiteStore) GetEvents(ctx context.Context, patientID string) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_offset, category, label, detail
		FROM patient_events
		WHERE patient_id = ?
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

// GetEventsBatch returns ordered histories for several patients.
func (s *SQLiteStore) GetEventsBatch(ctx context.Context, patientIDs []string) (map[string][]events.Event, error) {
	if len(patientIDs) == 0 {
		return map[string][]events.Event{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(patientIDs)), ",")
	args := make([]any, len(patientIDs))
	for i, pid := range patientIDs {
		args[i] = pid
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, day_offset, category, label, detail
		FROM patient_events
		WHERE patient_id IN (`+placeholders+`)
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
func (s *SQLiteStore) ListPatientIDs(ctx context.Context) ([]string, error) {
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

// LoadCodes returns the code-to-name registry.
func (s *SQLiteStore) LoadCodes(ctx context.Context) (map[string]string, error) {
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

var _ events.Store = (*SQLiteStore)(nil)
