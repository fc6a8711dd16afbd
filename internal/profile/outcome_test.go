package profile

import "testing"

func TestDetectOutcome(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   Outcome
	}{
		{"empty", nil, OutcomeUnknown},
		{"palliative", []string{"Kontrola", "Paliativní péče"}, OutcomeEndOfLife},
		{"death", []string{"Prohlídka zemřelého"}, OutcomeDeath},
		{"discharged", []string{"Propuštěn do domácí péče"}, OutcomeDischarged},
		{"critical", []string{"Překlad na JIP"}, OutcomeCritical},
		{"rehab", []string{"Rehabilitace po operaci"}, OutcomeRehabilitation},
		{"ongoing", []string{"Běžná kontrola", "Odběr krve"}, OutcomeOngoing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectOutcome(tt.labels); got != tt.want {
				t.Errorf("DetectOutcome = %v, want %v", got, tt.want)
			}
		})
	}
}

// END_OF_LIFE outranks DEATH, which outranks everything below it, even when
// several keyword groups appear in the same tail.
func TestDetectOutcomePriority(t *testing.T) {
	labels := []string{"Překlad na JIP", "Prohlídka zemřelého", "Hospicová péče"}
	if got := DetectOutcome(labels); got != OutcomeEndOfLife {
		t.Errorf("DetectOutcome = %v, want END_OF_LIFE", got)
	}

	labels = []string{"Překlad na JIP", "Prohlídka zemřelého"}
	if got := DetectOutcome(labels); got != OutcomeDeath {
		t.Errorf("DetectOutcome = %v, want DEATH", got)
	}
}

// Only the last events count; an early critical event followed by a long
// quiet stretch reads as ongoing.
func TestDetectOutcomeTailWindow(t *testing.T) {
	labels := []string{"Resuscitace"}
	for i := 0; i < 10; i++ {
		labels = append(labels, "Běžná kontrola")
	}
	if got := DetectOutcome(labels); got != OutcomeOngoing {
		t.Errorf("DetectOutcome = %v, want ONGOING", got)
	}

	// Inside the window it still counts.
	labels = labels[:8]
	if got := DetectOutcome(labels); got != OutcomeCritical {
		t.Errorf("DetectOutcome = %v, want CRITICAL", got)
	}
}
