package events

import (
	"reflect"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"PROCEDURE", CategoryProcedure},
		{"procedure", CategoryProcedure},
		{" care ", CategoryProcedure},
		{"VYKON", CategoryProcedure},
		{"MEDICATION", CategoryMedication},
		{"HEALTH_TOOL", CategoryHealthTool},
		{"STOMATOLOGICAL_TOOL", CategoryStomatologicalTool},
		{"TRANSPORT", CategoryTransport},
		{"HOSPITALIZATION", CategoryHospitalization},
		{"SPA", CategorySpa},
		{"lazne", CategorySpa},
		{"DEATH", CategoryDeath},
		{"", CategoryUnknown},
		{"SOMETHING_ELSE", CategoryUnknown},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.raw); got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSortedByDayDoesNotMutate(t *testing.T) {
	in := []Event{
		{DayOffset: 30, Label: "c"},
		{DayOffset: 10, Label: "a"},
		{DayOffset: 20, Label: "b"},
	}
	orig := make([]Event, len(in))
	copy(orig, in)

	out := SortedByDay(in)

	if !reflect.DeepEqual(in, orig) {
		t.Errorf("input mutated: %v", in)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].DayOffset > out[i].DayOffset {
			t.Errorf("not sorted at %d: %v", i, out)
		}
	}
}

func TestSortedByDayStableOnTies(t *testing.T) {
	in := []Event{
		{DayOffset: 5, Label: "first"},
		{DayOffset: 5, Label: "second"},
		{DayOffset: 1, Label: "earliest"},
		{DayOffset: 5, Label: "third"},
	}
	out := SortedByDay(in)

	want := []string{"earliest", "first", "second", "third"}
	for i, label := range want {
		if out[i].Label != label {
			t.Errorf("position %d = %q, want %q", i, out[i].Label, label)
		}
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name string
		evts []Event
		want int
	}{
		{"empty", nil, 0},
		{"single", []Event{{DayOffset: 7}}, 0},
		{"ordered", []Event{{DayOffset: 10}, {DayOffset: 45}}, 35},
		{"same day", []Event{{DayOffset: 3}, {DayOffset: 3}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Span(tt.evts); got != tt.want {
				t.Errorf("Span() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDepartment(t *testing.T) {
	withDept := Event{Detail: map[string]any{"department": "KARDIOLOGIE"}}
	if got := withDept.Department(); got != "KARDIOLOGIE" {
		t.Errorf("Department() = %q, want KARDIOLOGIE", got)
	}

	noDetail := Event{}
	if got := noDetail.Department(); got != "" {
		t.Errorf("Department() on nil detail = %q, want empty", got)
	}

	wrongType := Event{Detail: map[string]any{"department": 42}}
	if got := wrongType.Department(); got != "" {
		t.Errorf("Department() on non-string detail = %q, want empty", got)
	}
}

func TestLabelsAndCategories(t *testing.T) {
	evts := []Event{
		{Label: "a", Category: CategoryProcedure},
		{Label: "b", Category: CategoryMedication},
	}
	if got := Labels(evts); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Labels() = %v", got)
	}
	if got := Categories(evts); !reflect.DeepEqual(got, []string{"PROCEDURE", "MEDICATION"}) {
		t.Errorf("Categories() = %v", got)
	}
}
