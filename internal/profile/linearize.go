// Package profile compresses an arbitrarily long clinical event history
// into a bounded, information-dense string suitable for embedding.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"patient-trajectory/internal/events"
)

// EmptyProfile is returned for an empty event history. It is a sentinel
// string, not an error: a patient with no history is a valid query.
const EmptyProfile = "PROFILE:EMPTY | No recorded history"

// Config tunes the linearizer. Zero values fall back to defaults.
type Config struct {
	// MaxLength is the hard character budget for the profile string.
	MaxLength int

	// RecentEvents caps the [RECENT] section.
	RecentEvents int

	// TopDepartments caps the [DEPTS] section.
	TopDepartments int

	// TopCritical caps the [CRITICAL] section.
	TopCritical int

	// QueryWindow bounds how many trailing events the query-time variant
	// considers.
	QueryWindow int
}

// DefaultConfig returns the tuning used in production. MaxLength targets
// the context window of small sentence-embedding models.
func DefaultConfig() Config {
	return Config{
		MaxLength:      900,
		RecentEvents:   4,
		TopDepartments: 4,
		TopCritical:    5,
		QueryWindow:    100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxLength <= 0 {
		c.MaxLength = d.MaxLength
	}
	if c.RecentEvents <= 0 {
		c.RecentEvents = d.RecentEvents
	}
	if c.TopDepartments <= 0 {
		c.TopDepartments = d.TopDepartments
	}
	if c.TopCritical <= 0 {
		c.TopCritical = d.TopCritical
	}
	if c.QueryWindow <= 0 {
		c.QueryWindow = d.QueryWindow
	}
	return c
}

// Linearizer builds fixed-size semantic profiles from event histories.
type Linearizer struct {
	cfg  Config
	dict *Dictionary
}

// NewLinearizer creates a Linearizer. dict may be nil; labels then never
// resolve through the code registry.
func NewLinearizer(cfg Config, dict *Dictionary) *Linearizer {
	return &Linearizer{cfg: cfg.withDefaults(), dict: dict}
}

// Linearize builds the semantic profile for an event history. The input
// must already be sorted ascending by day offset (events.SortedByDay); it
// is never mutated. patientID may be empty.
//
// Output shape:
//
//	PID:123 [PROFILE] Events:959 Span:335d Hosp:4 Intensity:HIGH
//	[DEPTS] LAB:420 SURGERY:180 [CRITICAL] STATIM:12 [TRAJECTORY] STABLE
//	[RECENT] T+10:CARDIO:Vyšetření | T+5:LAB:Biochemie
func (l *Linearizer) Linearize(evts []events.Event, patientID string) string {
	if len(evts) == 0 {
		return EmptyProfile
	}

	span := events.Span(evts)
	hosp := 0
	for _, e := range evts {
		if e.Category == events.CategoryHospitalization {
			hosp++
		}
	}

	var parts []string

	header := fmt.Sprintf("[PROFILE] Events:%d Span:%dd Hosp:%d Intensity:%s",
		len(evts), span, hosp, careIntensity(len(evts), span))
	if patientID != "" {
		header = "PID:" + patientID + " " + header
	}
	parts = append(parts, header)

	if depts := l.topDepartments(evts); len(depts) > 0 {
		parts = append(parts, "[DEPTS] "+strings.Join(depts, " "))
	}

	if crit := l.criticalMarkers(evts); len(crit) > 0 {
		parts = append(parts, "[CRITICAL] "+strings.Join(crit, " "))
	}

	parts = append(parts, "[TRAJECTORY] "+string(classifyTrajectory(evts)))

	if recent := l.recentSignificant(evts); len(recent) > 0 {
		parts = append(parts, "[RECENT] "+strings.Join(recent, " | "))
	}

	return truncate(strings.Join(parts, " "), l.cfg.MaxLength)
}

// LinearizeQuery is the query-time variant: identical to Linearize but
// restricted to the most recent QueryWindow events to bound latency.
func (l *Linearizer) LinearizeQuery(evts []events.Event) string {
	if len(evts) > l.cfg.QueryWindow {
		evts = evts[len(evts)-l.cfg.QueryWindow:]
	}
	return l.Linearize(evts, "")
}

// TrajectoryClass describes how care density evolved over a history.
type TrajectoryClass string

const (
	TrajectoryLimitedData  TrajectoryClass = "LIMITED_DATA"
	TrajectoryEndOfLife    TrajectoryClass = "END_OF_LIFE"
	TrajectoryEscalating   TrajectoryClass = "ESCALATING"
	TrajectoryIntensifying TrajectoryClass = "INTENSIFYING"
	TrajectoryImproving    TrajectoryClass = "IMPROVING"
	TrajectoryStable       TrajectoryClass = "STABLE"
)

// careIntensity buckets event density into a class. A non-positive span
// means everything happened at once, i.e. an acute episode.
func careIntensity(count, spanDays int) string {
	if spanDays <= 0 {
		return "ACUTE"
	}
	perMonth := float64(count) / float64(spanDays) * 30
	switch {
	case perMonth > 50:
		return "INTENSIVE"
	case perMonth > 20:
		return "HIGH"
	case perMonth > 5:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// classifyTrajectory partitions the history into chronological thirds by
// event count and compares early vs. late density. Keyword rules run before
// density rules, in order: palliative beats escalation beats density shifts.
func classifyTrajectory(evts []events.Event) TrajectoryClass {
	if len(evts) < 6 {
		return TrajectoryLimitedData
	}

	third := len(evts) / 3
	early := evts[:third]
	late := evts[2*third:]

	earlyDensity := float64(len(early)) / float64(groupSpan(early))
	lateDensity := float64(len(late)) / float64(groupSpan(late))

	lateLabels := strings.Join(events.Labels(late), " ")

	switch {
	case PalliativeTerms.MatchAny(lateLabels):
		return TrajectoryEndOfLife
	case EscalationTerms.MatchAny(lateLabels):
		return TrajectoryEscalating
	case lateDensity > earlyDensity*1.5:
		return TrajectoryIntensifying
	case lateDensity < earlyDensity*0.5:
		return TrajectoryImproving
	default:
		return TrajectoryStable
	}
}

// groupSpan is the day span within a contiguous group, floored at 1 so
// density never divides by zero.
func groupSpan(group []events.Event) int {
	if len(group) < 2 {
		return 1
	}
	span := group[len(group)-1].DayOffset - group[0].DayOffset
	if span < 1 {
		return 1
	}
	return span
}

// topDepartments summarizes where care happened, as CATEGORY:count pairs
// sorted by count descending, ties keeping first-encountered order.
func (l *Linearizer) topDepartments(evts []events.Event) []string {
	counts := map[string]int{}
	var order []string
	for _, e := range evts {
		cat := CategorizeDepartment(e.Department())
		if _, seen := counts[cat]; !seen {
			order = append(order, cat)
		}
		counts[cat]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > l.cfg.TopDepartments {
		order = order[:l.cfg.TopDepartments]
	}
	out := make([]string, len(order))
	for i, cat := range order {
		out[i] = fmt.Sprintf("%s:%d", cat, counts[cat])
	}
	return out
}

// criticalMarkers counts critical-keyword hits across all event labels,
// keeping the top TopCritical by count. Ties break in vocabulary order.
func (l *Linearizer) criticalMarkers(evts []events.Event) []string {
	counts := make([]int, len(CriticalProfile))
	for _, e := range evts {
		upper := strings.ToUpper(e.Label)
		for i, kw := range CriticalProfile {
			if strings.Contains(upper, kw) {
				counts[i]++
			}
		}
	}

	idx := make([]int, 0, len(CriticalProfile))
	for i, c := range counts {
		if c > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return counts[idx[a]] > counts[idx[b]]
	})

	if len(idx) > l.cfg.TopCritical {
		idx = idx[:l.cfg.TopCritical]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = fmt.Sprintf("%s:%d", CriticalProfile[j], counts[j])
	}
	return out
}

// recentSignificant scans newest-to-oldest for events worth surfacing,
// skipping routine noise and medication aggregates, and returns them back
// in chronological order as T<offset>:<dept>:<label> entries.
func (l *Linearizer) recentSignificant(evts []events.Event) []string {
	var picked []string
	for i := len(evts) - 1; i >= 0; i-- {
		e := evts[i]
		label := strings.TrimSpace(l.dict.DisplayLabel(e))
		if IgnoredTerms.MatchAny(label) {
			continue
		}
		if e.Category == events.CategoryMedication {
			continue
		}
		entry := fmt.Sprintf("T%+d:%s:%s",
			e.DayOffset, CategorizeDepartment(e.Department()), shortLabel(label))
		picked = append(picked, entry)
		if len(picked) >= l.cfg.RecentEvents {
			break
		}
	}

	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

// shortLabel keeps the first 40 characters of a label, marking longer ones
// with an ellipsis.
func shortLabel(label string) string {
	r := []rune(label)
	if len(r) <= 40 {
		return label
	}
	return string(r[:40]) + "..."
}

// truncate hard-caps s at max characters, marking the cut with an ellipsis.
// Counts runes, not bytes: the labels are Czech.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
