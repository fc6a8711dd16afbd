package events

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the backing event store could not be reached or
// failed while serving a query. It is a hard failure and propagates to the
// caller; it is never converted into an empty result.
var ErrUnavailable = errors.New("event store unavailable")

// Store provides read-only access to patient event histories.
//
// Both methods return events sorted ascending by DayOffset. Implementations
// must wrap hard failures with ErrUnavailable so callers can distinguish
// "store is down" from "patient has no events" (which is a nil slice).
type Store interface {
	// GetEvents returns the full ordered history for one patient.
	GetEvents(ctx context.Context, patientID string) ([]Event, error)

	// GetEventsBatch returns ordered histories for several patients at once.
	// Patients with no events are absent from the returned map.
	GetEventsBatch(ctx context.Context, patientIDs []string) (map[string][]Event, error)

	// ListPatientIDs returns the IDs of all patients known to the store.
	ListPatientIDs(ctx context.Context) ([]string, error)
}
