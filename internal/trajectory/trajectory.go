// Package trajectory retrieves nearest-neighbor patients by profile
// embedding and replays their subsequent real events as candidate futures.
package trajectory

import (
	"errors"
	"fmt"

	"patient-trajectory/internal/events"
	"patient-trajectory/internal/profile"
)

// DefaultTopK is the number of trajectories returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// FutureEvent is one event in a candidate future, expressed relative to
// the alignment anchor. DeltaDays of the first event may be positive,
// negative, or zero depending on how the anchor aligned.
type FutureEvent struct {
	Label     string          `json:"label"`
	Category  events.Category `json:"category"`
	DeltaDays int             `json:"delta_days"`
	Detail    map[string]any  `json:"detail,omitempty"`
}

// Meta describes where a trajectory came from.
type Meta struct {
	SourcePatientID string          `json:"source_patient_id"`
	EventCount      int             `json:"event_count"`
	TimeSpanDays    int             `json:"time_span_days"`
	Outcome         profile.Outcome `json:"outcome"`
}

// Trajectory is one candidate future: a single similar patient's real
// subsequent history, in its original chronological order.
type Trajectory struct {
	Future     []FutureEvent `json:"future_events"`
	Confidence int           `json:"confidence"` // 0-100
	Meta       Meta          `json:"metadata"`
}

// categorize tags err with the given failure category unless it already
// carries it, so callers can errors.Is against one sentinel per
// collaborator regardless of which layer failed.
func categorize(err, category error) error {
	if errors.Is(err, category) {
		return err
	}
	return fmt.Errorf("%w: %v", category, err)
}
