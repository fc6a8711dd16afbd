package profile

import (
	"fmt"
	"strings"
	"testing"

	"patient-trajectory/internal/events"
)

func TestLinearizeEmpty(t *testing.T) {
	l := NewLinearizer(Config{}, nil)
	if got := l.Linearize(nil, "p1"); got != EmptyProfile {
		t.Errorf("Linearize(nil) = %q, want %q", got, EmptyProfile)
	}
}

func TestLinearizeHeader(t *testing.T) {
	l := NewLinearizer(Config{}, nil)
	evts := []events.Event{
		{DayOffset: 0, Category: events.CategoryProcedure, Label: "Vyšetření"},
		{DayOffset: 10, Category: events.CategoryHospitalization, Label: "Hospitalizace"},
		{DayOffset: 30, Category: events.CategoryProcedure, Label: "Kontrola"},
	}

	got := l.Linearize(evts, "p42")
	if !strings.HasPrefix(got, "PID:p42 [PROFILE] Events:3 Span:30d Hosp:1 ") {
		t.Errorf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "[TRAJECTORY] LIMITED_DATA") {
		t.Errorf("short history should classify LIMITED_DATA: %q", got)
	}

	// Without a patient ID the prefix is dropped.
	got = l.Linearize(evts, "")
	if !strings.HasPrefix(got, "[PROFILE] ") {
		t.Errorf("expected bare header: %q", got)
	}
}

// The profile length cap must hold for any history, including ones with
// long multi-byte labels.
func TestLinearizeLengthCap(t *testing.T) {
	l := NewLinearizer(Config{MaxLength: 200}, nil)

	long := strings.Repeat("Velmi dlouhé vyšetření šššš ", 10)
	var evts []events.Event
	for i := 0; i < 500; i++ {
		evts = append(evts, events.Event{
			DayOffset: i,
			Category:  events.CategoryProcedure,
			Label:     fmt.Sprintf("%s %d", long, i),
			Detail:    map[string]any{"department": "Kardiologie"},
		})
	}

	got := l.Linearize(evts, "p1")
	if n := len([]rune(got)); n > 200 {
		t.Errorf("profile length %d exceeds cap 200", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated profile should end with ellipsis: %q", got)
	}
}

func TestCareIntensity(t *testing.T) {
	tests := []struct {
		name  string
		count int
		span  int
		want  string
	}{
		{"zero span", 10, 0, "ACUTE"},
		{"intensive", 100, 30, "INTENSIVE"},
		{"high", 30, 30, "HIGH"},
		{"moderate", 10, 30, "MODERATE"},
		{"low", 3, 30, "LOW"},
		{"boundary 50 is high", 50, 30, "HIGH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := careIntensity(tt.count, tt.span); got != tt.want {
				t.Errorf("careIntensity(%d, %d) = %q, want %q", tt.count, tt.span, got, tt.want)
			}
		})
	}
}

// evenly spaces count procedure events over spanDays.
func spread(count, spanDays int, label string) []events.Event {
	evts := make([]events.Event, count)
	for i := range evts {
		evts[i] = events.Event{
			DayOffset: i * spanDays / count,
			Category:  events.CategoryProcedure,
			Label:     label,
		}
	}
	return evts
}

func TestClassifyTrajectory(t *testing.T) {
	t.Run("limited data", func(t *testing.T) {
		if got := classifyTrajectory(spread(5, 100, "Kontrola")); got != TrajectoryLimitedData {
			t.Errorf("got %v, want LIMITED_DATA", got)
		}
	})

	t.Run("stable", func(t *testing.T) {
		if got := classifyTrajectory(spread(30, 300, "Kontrola")); got != TrajectoryStable {
			t.Errorf("got %v, want STABLE", got)
		}
	})

	t.Run("intensifying", func(t *testing.T) {
		// Sparse early events, dense late ones.
		var evts []events.Event
		for i := 0; i < 10; i++ {
			evts = append(evts, events.Event{DayOffset: i * 30, Category: events.CategoryProcedure, Label: "Kontrola"})
		}
		for i := 0; i < 10; i++ {
			evts = append(evts, events.Event{DayOffset: 300 + i, Category: events.CategoryProcedure, Label: "Kontrola"})
		}
		if got := classifyTrajectory(evts); got != TrajectoryIntensifying {
			t.Errorf("got %v, want INTENSIFYING", got)
		}
	})

	t.Run("improving", func(t *testing.T) {
		var evts []events.Event
		for i := 0; i < 10; i++ {
			evts = append(evts, events.Event{DayOffset: i, Category: events.CategoryProcedure, Label: "Kontrola"})
		}
		for i := 0; i < 10; i++ {
			evts = append(evts, events.Event{DayOffset: 100 + i*30, Category: events.CategoryProcedure, Label: "Kontrola"})
		}
		if got := classifyTrajectory(evts); got != TrajectoryImproving {
			t.Errorf("got %v, want IMPROVING", got)
		}
	})

	t.Run("escalating", func(t *testing.T) {
		evts := spread(30, 300, "Kontrola")
		evts[len(evts)-1].Label = "Překlad na JIP"
		if got := classifyTrajectory(evts); got != TrajectoryEscalating {
			t.Errorf("got %v, want ESCALATING", got)
		}
	})

	t.Run("end of life beats escalation", func(t *testing.T) {
		evts := spread(30, 300, "Kontrola")
		evts[len(evts)-2].Label = "Překlad na JIP"
		evts[len(evts)-1].Label = "Paliativní péče"
		if got := classifyTrajectory(evts); got != TrajectoryEndOfLife {
			t.Errorf("got %v, want END_OF_LIFE", got)
		}
	})

	t.Run("early palliative event does not trigger end of life", func(t *testing.T) {
		evts := spread(30, 300, "Kontrola")
		evts[0].Label = "Paliativní konzultace"
		if got := classifyTrajectory(evts); got != TrajectoryStable {
			t.Errorf("got %v, want STABLE", got)
		}
	})
}

func TestTopDepartments(t *testing.T) {
	l := NewLinearizer(Config{TopDepartments: 2}, nil)
	dept := func(d string) map[string]any { return map[string]any{"department": d} }

	var evts []events.Event
	for i := 0; i < 5; i++ {
		evts = append(evts, events.Event{Detail: dept("Biochemie")})
	}
	for i := 0; i < 3; i++ {
		evts = append(evts, events.Event{Detail: dept("Kardiologie")})
	}
	evts = append(evts, events.Event{Detail: dept("Neurologie")})

	got := l.topDepartments(evts)
	want := []string{"LAB:5", "CARDIO:3"}
	if len(got) != len(want) {
		t.Fatalf("topDepartments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topDepartments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCriticalMarkers(t *testing.T) {
	l := NewLinearizer(Config{TopCritical: 2}, nil)

	var evts []events.Event
	for i := 0; i < 3; i++ {
		evts = append(evts, events.Event{Label: "Odběr STATIM"})
	}
	evts = append(evts,
		events.Event{Label: "Biopsie jater"},
		events.Event{Label: "Dialýza chronický program"},
		events.Event{Label: "Běžná kontrola"},
	)

	got := l.criticalMarkers(evts)
	if len(got) != 2 {
		t.Fatalf("criticalMarkers = %v, want 2 entries", got)
	}
	if got[0] != "STATIM:3" {
		t.Errorf("first marker = %q, want STATIM:3", got[0])
	}
	// BIOPSIE and DIALÝZA tie at 1; BIOPSIE comes first in the vocabulary.
	if got[1] != "BIOPSIE:1" {
		t.Errorf("second marker = %q, want BIOPSIE:1", got[1])
	}
}

func TestRecentSignificant(t *testing.T) {
	l := NewLinearizer(Config{RecentEvents: 3}, nil)

	evts := []events.Event{
		{DayOffset: 1, Category: events.CategoryProcedure, Label: "Vyšetření A"},
		{DayOffset: 2, Category: events.CategoryProcedure, Label: "Vyšetření B"},
		{DayOffset: 3, Category: events.CategoryMedication, Label: "Paracetamol"},
		{DayOffset: 4, Category: events.CategoryProcedure, Label: "Regulační poplatek"},
		{DayOffset: 5, Category: events.CategoryProcedure, Label: "Vyšetření C"},
	}

	got := l.recentSignificant(evts)
	want := []string{
		"T+1:OTHER:Vyšetření A",
		"T+2:OTHER:Vyšetření B",
		"T+5:OTHER:Vyšetření C",
	}
	if len(got) != len(want) {
		t.Fatalf("recentSignificant = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recentSignificant[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinearizeQueryWindow(t *testing.T) {
	l := NewLinearizer(Config{QueryWindow: 10}, nil)

	var evts []events.Event
	for i := 0; i < 50; i++ {
		evts = append(evts, events.Event{DayOffset: i, Category: events.CategoryProcedure, Label: "Kontrola"})
	}

	got := l.LinearizeQuery(evts)
	if !strings.Contains(got, "Events:10") {
		t.Errorf("query profile should cover 10 trailing events: %q", got)
	}
	if !strings.Contains(got, "Span:9d") {
		t.Errorf("query profile span should be the window's: %q", got)
	}
}

func TestShortLabel(t *testing.T) {
	short := "Kontrola"
	if got := shortLabel(short); got != short {
		t.Errorf("shortLabel(%q) = %q", short, got)
	}

	long := strings.Repeat("š", 45)
	got := shortLabel(long)
	if got != strings.Repeat("š", 40)+"..." {
		t.Errorf("shortLabel of 45 runes = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate under cap = %q", got)
	}
	got := truncate(strings.Repeat("š", 20), 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncate length = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncate should end with ellipsis: %q", got)
	}
}
