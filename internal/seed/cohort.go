// Package seed generates a synthetic demo cohort so the tool can be tried
// without access to real insurance data.
package seed

import (
	"fmt"
	"math/rand"

	"patient-trajectory/internal/events"
)

// archetype is a generator for one kind of clinical course.
type archetype struct {
	name  string
	build func(rng *rand.Rand) []events.Event
}

// archetypes returns the clinical course templates the cohort is drawn
// from. Each produces a different trajectory shape so demo retrieval has
// something to distinguish.
func archetypes() []archetype {
	return []archetype{
		{"stable-chronic", stableChronic},
		{"escalating-oncology", escalatingOncology},
		{"end-of-life", endOfLife},
		{"postop-rehab", postopRehab},
	}
}

func procedure(day int, label, dept string) events.Event {
	return events.Event{
		DayOffset: day,
		Category:  events.CategoryProcedure,
		Label:     label,
		Detail:    map[string]any{"department": dept},
	}
}

func medication(day int, label string) events.Event {
	return events.Event{
		DayOffset: day,
		Category:  events.CategoryMedication,
		Label:     label,
	}
}

// stableChronic is routine quarterly care over roughly two years.
func stableChronic(rng *rand.Rand) []events.Event {
	var evts []events.Event
	for day := 0; day < 720; day += 80 + rng.Intn(30) {
		evts = append(evts,
			procedure(day, "Kontrolní vyšetření", "Interna"),
			procedure(day, "Biochemie séra", "Oddělení klinické biochemie"),
			medication(day+1, "Výdej chronické medikace"),
		)
	}
	return evts
}

// escalatingOncology starts routine and shifts into dense oncological care.
func escalatingOncology(rng *rand.Rand) []events.Event {
	var evts []events.Event
	for day := 0; day < 300; day += 60 + rng.Intn(30) {
		evts = append(evts, procedure(day, "Preventivní prohlídka", "Interna"))
	}
	onset := 300 + rng.Intn(60)
	evts = append(evts,
		procedure(onset, "CT vyšetření STATIM", "Radiologie"),
		procedure(onset+7, "Biopsie ložiska", "Klinická onkologie"),
	)
	for i := 0; i < 6; i++ {
		day := onset + 21 + i*21
		evts = append(evts,
			procedure(day, fmt.Sprintf("Chemoterapie cyklus %d", i+1), "Klinická onkologie"),
			procedure(day+2, "Krevní obraz kontrolní", "Hematologie"),
		)
	}
	return evts
}

// endOfLife escalates through intensive care into palliative care.
func endOfLife(rng *rand.Rand) []events.Event {
	evts := escalatingOncology(rng)
	last := evts[len(evts)-1].DayOffset
	evts = append(evts,
		procedure(last+14, "Hospitalizace na JIP", "Urgentní příjem"),
		procedure(last+30, "Paliativní konzilium", "Hospic"),
		procedure(last+45, "Paliativní péče", "Hospic"),
	)
	evts[len(evts)-3].Category = events.CategoryHospitalization
	return evts
}

// postopRehab is surgery followed by tapering rehabilitation.
func postopRehab(rng *rand.Rand) []events.Event {
	opDay := 10 + rng.Intn(20)
	evts := []events.Event{
		procedure(0, "Předoperační vyšetření", "Oddělení chirurgie"),
		{DayOffset: opDay, Category: events.CategoryHospitalization,
			Label: "Operace kolenního kloubu", Detail: map[string]any{"department": "Ortopedie"}},
		procedure(opDay+3, "Pooperační kontrola", "Ortopedie"),
	}
	for i := 0; i < 8; i++ {
		evts = append(evts, procedure(opDay+14+i*10, "Rehabilitace", "Rehabilitační oddělení"))
	}
	evts = append(evts, procedure(opDay+120, "Propuštěn z péče", "Ortopedie"))
	return evts
}

// demoCodes is a small slice of the medication code registry, enough to
// exercise code resolution in demos.
func demoCodes() map[string]string {
	return map[string]string{
		"0000009": "Paralen 500",
		"0000254": "Ibalgin 400",
		"0093115": "Warfarin Orion",
	}
}
