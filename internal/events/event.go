// Package events defines the clinical event model shared by the profile
// linearizer, the trajectory engine, and the evaluation harness.
package events

import (
	"sort"
	"strings"
)

// Category is the closed set of clinical event kinds. Raw type strings from
// a backing store are normalized into a Category once, at the boundary, so
// downstream code never branches on loose strings.
type Category string

const (
	CategoryProcedure          Category = "PROCEDURE"
	CategoryMedication         Category = "MEDICATION"
	CategoryHealthTool         Category = "HEALTH_TOOL"
	CategoryStomatologicalTool Category = "STOMATOLOGICAL_TOOL"
	CategoryTransport          Category = "TRANSPORT"
	CategoryHospitalization    Category = "HOSPITALIZATION"
	CategorySpa                Category = "SPA"
	CategoryDeath              Category = "DEATH"
	CategoryUnknown            Category = "UNKNOWN"
)

// ParseCategory normalizes a raw type string into a Category.
// Unrecognized values map to CategoryUnknown rather than erroring, since
// predictions are advisory and a single odd row should not fail a query.
func ParseCategory(raw string) Category {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PROCEDURE", "CARE", "VYKON":
		return CategoryProcedure
	case "MEDICATION":
		return CategoryMedication
	case "HEALTH_TOOL":
		return CategoryHealthTool
	case "STOMATOLOGICAL_TOOL":
		return CategoryStomatologicalTool
	case "TRANSPORT":
		return CategoryTransport
	case "HOSPITALIZATION":
		return CategoryHospitalization
	case "SPA", "LAZNE":
		return CategorySpa
	case "DEATH":
		return CategoryDeath
	default:
		return CategoryUnknown
	}
}

// Event is a single entry in a patient's clinical history.
//
// DayOffset is relative to a patient-specific reference point, so offsets
// are only comparable within one patient's history. Within a history events
// are totally ordered by DayOffset, ties broken by insertion order.
type Event struct {
	DayOffset int            `json:"day_offset"`
	Category  Category       `json:"category"`
	Label     string         `json:"label"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Department returns the free-text department string from the event detail,
// or "" when absent.
func (e Event) Department() string {
	if e.Detail == nil {
		return ""
	}
	if d, ok := e.Detail["department"].(string); ok {
		return d
	}
	return ""
}

// SortedByDay returns a new slice with the events ordered ascending by
// DayOffset, ties keeping their original relative order. The input slice is
// never mutated; callers that need ordering must ask for it explicitly.
func SortedByDay(evts []Event) []Event {
	out := make([]Event, len(evts))
	copy(out, evts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayOffset < out[j].DayOffset
	})
	return out
}

// Span returns the day-offset distance between the last and first event.
// Returns 0 for fewer than two events.
func Span(evts []Event) int {
	if len(evts) < 2 {
		return 0
	}
	min, max := evts[0].DayOffset, evts[0].DayOffset
	for _, e := range evts[1:] {
		if e.DayOffset < min {
			min = e.DayOffset
		}
		if e.DayOffset > max {
			max = e.DayOffset
		}
	}
	return max - min
}

// Labels returns the labels of the given events in order.
func Labels(evts []Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Label
	}
	return out
}

// Categories returns the categories of the given events in order, as strings.
func Categories(evts []Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = string(e.Category)
	}
	return out
}
