package profile

import "strings"

// Outcome classifies how an event segment ends.
type Outcome string

const (
	OutcomeUnknown        Outcome = "UNKNOWN"
	OutcomeEndOfLife      Outcome = "END_OF_LIFE"
	OutcomeDeath          Outcome = "DEATH"
	OutcomeDischarged     Outcome = "DISCHARGED"
	OutcomeCritical       Outcome = "CRITICAL"
	OutcomeRehabilitation Outcome = "REHABILITATION"
	OutcomeOngoing        Outcome = "ONGOING"
)

// outcomeTailEvents is how many trailing events the outcome scan considers.
const outcomeTailEvents = 10

// DetectOutcome classifies an event segment by scanning the concatenated
// labels of its last events against a fixed keyword priority:
// END_OF_LIFE > DEATH > DISCHARGED > CRITICAL > REHABILITATION > ONGOING.
// An empty segment is UNKNOWN. The same heuristic is applied to candidate
// futures by the trajectory engine and to held-out futures by the
// evaluation harness, so both share this one implementation.
func DetectOutcome(labels []string) Outcome {
	if len(labels) == 0 {
		return OutcomeUnknown
	}
	tail := labels
	if len(tail) > outcomeTailEvents {
		tail = tail[len(tail)-outcomeTailEvents:]
	}
	joined := strings.Join(tail, " ")

	switch {
	case PalliativeTerms.MatchAny(joined):
		return OutcomeEndOfLife
	case DeathTerms.MatchAny(joined):
		return OutcomeDeath
	case DischargeTerms.MatchAny(joined):
		return OutcomeDischarged
	case EscalationTerms.MatchAny(joined):
		return OutcomeCritical
	case RehabTerms.MatchAny(joined):
		return OutcomeRehabilitation
	default:
		return OutcomeOngoing
	}
}
