package evaluate

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"half overlap", []string{"a", "b", "c"}, []string{"b", "c", "d"}, 0.5},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1},
		{"disjoint", []string{"a"}, []string{"b"}, 0},
		{"both empty", nil, nil, 0},
		{"one empty", []string{"a"}, nil, 0},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"a", "b", "b"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("jaccard = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestLCSLength(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"identical", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 3},
		{"with gaps", []string{"a", "x", "b", "y", "c"}, []string{"a", "b", "c"}, 3},
		{"order matters", []string{"a", "b"}, []string{"b", "a"}, 1},
		{"disjoint", []string{"a"}, []string{"b"}, 0},
		{"empty", nil, []string{"a"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lcsLength(tt.a, tt.b); got != tt.want {
				t.Errorf("lcsLength = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLCSRatio(t *testing.T) {
	// Common subsequence of 2 over a longer sequence of 3.
	got := lcsRatio([]string{"a", "b", "c"}, []string{"a", "c"})
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("lcsRatio = %f, want 2/3", got)
	}

	if got := lcsRatio(nil, nil); got != 0 {
		t.Errorf("lcsRatio of two empty sequences = %f, want 0", got)
	}

	// Symmetric in its arguments.
	a := []string{"a", "x", "b"}
	b := []string{"a", "b", "c", "d"}
	if lcsRatio(a, b) != lcsRatio(b, a) {
		t.Error("lcsRatio is not symmetric")
	}
}

func TestTemporalAccuracy(t *testing.T) {
	actual := []timedEvent{
		{label: "a", day: 10},
		{label: "b", day: 20},
	}
	predicted := []timedEvent{
		{label: "a", day: 13},
		{label: "b", day: 16},
		{label: "c", day: 99},
	}

	res := temporalAccuracy(actual, predicted)
	if res.Matched != 2 {
		t.Fatalf("Matched = %d, want 2", res.Matched)
	}
	// Errors are |13-10| = 3 and |16-20| = 4.
	if res.MAE == nil || math.Abs(*res.MAE-3.5) > 1e-9 {
		t.Errorf("MAE = %v, want 3.5", res.MAE)
	}
	wantRMSE := math.Sqrt((9.0 + 16.0) / 2.0)
	if res.RMSE == nil || math.Abs(*res.RMSE-wantRMSE) > 1e-9 {
		t.Errorf("RMSE = %v, want %f", res.RMSE, wantRMSE)
	}
}

// No label overlap means no matches, and nil metrics rather than zeros.
func TestTemporalAccuracyNoMatches(t *testing.T) {
	res := temporalAccuracy(
		[]timedEvent{{label: "a", day: 1}},
		[]timedEvent{{label: "b", day: 1}},
	)
	if res.MAE != nil || res.RMSE != nil {
		t.Errorf("unmatched events should yield nil metrics, got %v/%v", res.MAE, res.RMSE)
	}
	if res.Matched != 0 {
		t.Errorf("Matched = %d, want 0", res.Matched)
	}
}

// Each prediction can be consumed at most once.
func TestTemporalAccuracyConsumesPredictions(t *testing.T) {
	actual := []timedEvent{
		{label: "a", day: 10},
		{label: "a", day: 11},
		{label: "a", day: 12},
	}
	predicted := []timedEvent{
		{label: "a", day: 10},
	}
	res := temporalAccuracy(actual, predicted)
	if res.Matched != 1 {
		t.Errorf("Matched = %d, want 1", res.Matched)
	}
}

func TestCriticalEvents(t *testing.T) {
	set := func(labels ...string) map[string]struct{} {
		s := make(map[string]struct{})
		for _, l := range labels {
			s[l] = struct{}{}
		}
		return s
	}

	t.Run("partial overlap", func(t *testing.T) {
		res := criticalEvents(set("sepse", "operace"), set("sepse", "dialýza"))
		if res.Precision == nil || math.Abs(*res.Precision-0.5) > 1e-9 {
			t.Errorf("Precision = %v, want 0.5", res.Precision)
		}
		if res.Recall == nil || math.Abs(*res.Recall-0.5) > 1e-9 {
			t.Errorf("Recall = %v, want 0.5", res.Recall)
		}
		if res.TruePositives != 1 {
			t.Errorf("TruePositives = %d, want 1", res.TruePositives)
		}
	})

	t.Run("nothing predicted", func(t *testing.T) {
		res := criticalEvents(set("sepse"), set())
		if res.Precision != nil {
			t.Errorf("Precision should be nil with no predictions, got %v", *res.Precision)
		}
		if res.Recall == nil || *res.Recall != 0 {
			t.Errorf("Recall = %v, want 0", res.Recall)
		}
	})

	t.Run("nothing actual", func(t *testing.T) {
		res := criticalEvents(set(), set("sepse"))
		if res.Recall != nil {
			t.Errorf("Recall should be nil with no actual criticals, got %v", *res.Recall)
		}
		if res.Precision == nil || *res.Precision != 0 {
			t.Errorf("Precision = %v, want 0", res.Precision)
		}
	})

	t.Run("nothing at all", func(t *testing.T) {
		res := criticalEvents(set(), set())
		if res.Precision != nil || res.Recall != nil {
			t.Error("both metrics should be nil on empty sets")
		}
	})
}
