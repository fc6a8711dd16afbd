package profile

import "strings"

// Vocabulary is an ordered list of keywords matched case-insensitively as
// substrings. Order matters: it is the declaration order used for tie
// breaking and first-match-wins rules, so variants are defined once here
// rather than re-declared per component.
type Vocabulary []string

// MatchAny reports whether any keyword in the vocabulary appears as a
// case-insensitive substring of s.
func (v Vocabulary) MatchAny(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range v {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// The keyword sets below are domain constants from Czech national health
// insurance data. They are deliberately kept in the source language: the
// labels they match against are Czech.

// VocabVersion identifies the keyword set revision. The profile and
// evaluation critical variants must move together; bump this when either
// changes.
const VocabVersion = "2025-06"

// CriticalProfile is the critical-event vocabulary used by the linearizer
// when extracting [CRITICAL] markers for embedding.
var CriticalProfile = Vocabulary{
	"INTENZIVNÍ", "RESUSCITACE", "URGENTNÍ", "TROPONIN", "STATIM",
	"ZÁCHRANNÁ SLUŽBA", "PATOLOGICKÁ", "BIOPSIE", "ONKOLOGIE",
	"CHEMOTERAPIE", "DIALÝZA", "TRANSPLANTACE", "EMBOLIE", "INFARKT",
	"CMP", "STROKE", "SEPSE", "ŠOKOVÁ", "ARO", "JIP", "PALIATIV",
}

// CriticalEvaluation is the critical-event vocabulary used by the evaluation
// harness for precision/recall. It overlaps CriticalProfile but is not
// identical: it trades lab markers for surgical ones.
var CriticalEvaluation = Vocabulary{
	"INTENZIVNÍ", "JIP", "ARO", "RESUSCIT", "OPERACE", "CHIRURG",
	"BIOPSIE", "ONKOLOG", "CHEMOTERAPIE", "DIALÝZA", "TRANSPLANT",
	"INFARKT", "EMBOLIE", "SEPSE", "ŠOKOVÁ", "PALIATIV",
}

// IgnoredTerms marks administrative and routine events that carry no
// predictive signal; the linearizer drops them from [RECENT].
var IgnoredTerms = Vocabulary{
	"REGULAČNÍ POPLATEK", "SIGNÁLNÍ VÝKON", "OD TYPU", "MINIMÁLNÍ KONTAKT",
	"SEPARACE SÉRA", "ODBĚR KRVE", "ZAVEDENÍ KANYLY", "TELEMETRICKÉ SLEDOVÁNÍ",
	"OŠETŘOVACÍ DEN", "BONIFIKAČNÍ VÝKON", "OŠETŘOVATELSKÁ INTERVENCE",
	"(VZP) EPIZODA PÉČE", "ZDRAVOTNICKÁ DOPRAVNÍ SLUŽBA", "LÉKÁRENSKÁ PÉČE",
	"KREVNÍ OBRAZ", "GLUKÓZA",
}

// AdminFee marks the single administrative-fee event that is filtered out
// of candidate futures by the trajectory engine.
var AdminFee = Vocabulary{"REGULAČNÍ POPLATEK"}

// Outcome and trajectory keyword groups.
var (
	PalliativeTerms = Vocabulary{"PALIATIV", "HOSPIC"}
	EscalationTerms = Vocabulary{"INTENZIVNÍ", "JIP", "ARO", "RESUSCIT"}
	DeathTerms      = Vocabulary{"ZEMŘEL", "PROHLÍDKA ZEMŘELÉHO"}
	DischargeTerms  = Vocabulary{"PROPUŠTĚN"}
	RehabTerms      = Vocabulary{"REHABILITACE", "LÁZEŇ"}
)

// DeptCategory groups free-text department names under a stable category.
type DeptCategory struct {
	Name     string
	Keywords Vocabulary
}

// DeptCategories is iterated in declaration order; the first category with
// a matching keyword wins.
var DeptCategories = []DeptCategory{
	{"CARDIO", Vocabulary{"KARDIOLOGIE", "KARDIO", "SRDEČNÍ"}},
	{"SURGERY", Vocabulary{"CHIRURGIE", "OPERACE", "OPERAČNÍ"}},
	{"ONCOLOGY", Vocabulary{"ONKOLOGIE", "NÁDOR", "CHEMO", "RADIOTERAPIE"}},
	{"NEURO", Vocabulary{"NEUROLOGIE", "NEURO", "MOZK"}},
	{"INTERNAL", Vocabulary{"INTERNA", "VNITŘNÍ LÉKAŘSTVÍ"}},
	{"ORTHO", Vocabulary{"ORTOPEDIE", "ORTOPED"}},
	{"UROLOGY", Vocabulary{"UROLOGIE"}},
	{"LAB", Vocabulary{"BIOCHEMIE", "HEMATOLOG", "MIKROBIOLOG", "LABORATOŘ"}},
	{"IMAGING", Vocabulary{"RADIOLOG", "CT ", "MR ", "RTG", "SONO", "UZ "}},
	{"PALLIATIVE", Vocabulary{"PALIATIV", "HOSPIC"}},
	{"EMERGENCY", Vocabulary{"URGENTNÍ", "ZÁCHRAN", "AKUTNÍ"}},
}

// CategorizeDepartment maps a free-text department name to a category.
// Empty input and unmatched names map to "OTHER".
func CategorizeDepartment(dept string) string {
	if dept == "" {
		return "OTHER"
	}
	for _, dc := range DeptCategories {
		if dc.Keywords.MatchAny(dept) {
			return dc.Name
		}
	}
	return "OTHER"
}
