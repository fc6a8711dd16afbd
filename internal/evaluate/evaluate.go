package evaluate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"patient-trajectory/internal/events"
	"patient-trajectory/internal/profile"
	"patient-trajectory/internal/trajectory"
	"patient-trajectory/internal/vectorindex"
)

// Exclusion thresholds for a meaningful backtest: enough total history,
// enough known prefix, enough held-out future to score against.
const (
	minHistoryEvents  = 20
	minSnapshotEvents = 10
	minHoldoutEvents  = 5
)

// evalTopK is how many trajectories the harness requests per patient; only
// the top-ranked one is scored.
const evalTopK = 5

// Status reports whether a patient evaluation produced scores.
type Status string

const (
	StatusOK            Status = "OK"
	StatusNoPredictions Status = "NO_PREDICTIONS"
)

// Result is the per-patient evaluation record. Metric pointers are nil
// when the metric is unavailable for this patient (nothing matched or an
// empty denominator), which aggregation must skip, never count as zero.
type Result struct {
	PatientID string `json:"patient_id"`
	Status    Status `json:"status"`

	SnapshotEvents     int `json:"snapshot_events"`
	ActualFutureEvents int `json:"actual_future_events"`
	PredictedEvents    int `json:"predicted_events"`
	Confidence         int `json:"confidence"`

	// Set metrics (unordered overlap)
	LabelJaccard    float64 `json:"label_jaccard"`
	CategoryJaccard float64 `json:"category_jaccard"`

	// Sequence metrics (ordered similarity)
	LCSRatio         float64 `json:"lcs_ratio"`
	CategoryLCSRatio float64 `json:"category_lcs_ratio"`

	// Temporal metrics
	TemporalMAE   *float64 `json:"temporal_mae,omitempty"`
	TemporalRMSE  *float64 `json:"temporal_rmse,omitempty"`
	MatchedEvents int      `json:"matched_events"`
	TimeSpanDiff  int      `json:"time_span_diff"`

	// Critical event metrics
	CriticalPrecision      *float64 `json:"critical_precision,omitempty"`
	CriticalRecall         *float64 `json:"critical_recall,omitempty"`
	ActualCriticalCount    int      `json:"actual_critical_count"`
	PredictedCriticalCount int      `json:"predicted_critical_count"`

	// Outcome metrics
	OutcomeMatch     bool            `json:"outcome_match"`
	ActualOutcome    profile.Outcome `json:"actual_outcome"`
	PredictedOutcome profile.Outcome `json:"predicted_outcome"`

	TrajectoriesReturned int `json:"trajectories_returned"`
}

// Harness drives the trajectory engine in backtest mode.
type Harness struct {
	store  events.Store
	engine *trajectory.Engine
	index  vectorindex.Index
	log    zerolog.Logger
}

// NewHarness wires an evaluation harness around an engine and its
// collaborators.
func NewHarness(store events.Store, engine *trajectory.Engine, index vectorindex.Index, log zerolog.Logger) *Harness {
	return &Harness{
		store:  store,
		engine: engine,
		index:  index,
		log:    log.With().Str("component", "evaluate").Logger(),
	}
}

// EvaluatePatient backtests predictions for one patient: the history is
// split chronologically at snapshotPct, the engine predicts from the known
// prefix, and the prediction is scored against the real held-out future.
//
// Returns (nil, nil) when the patient fails an exclusion rule — that is an
// expected skip, not an error. Returns a Result with StatusNoPredictions
// when the engine had no similar patients with more events to offer.
func (h *Harness) EvaluatePatient(ctx context.Context, patientID string, snapshotPct float64) (*Result, error) {
	all, err := h.store.GetEvents(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", patientID, err)
	}

	if len(all) < minHistoryEvents {
		return nil, nil
	}
	snapshotCount := int(float64(len(all)) * snapshotPct)
	if snapshotCount < minSnapshotEvents {
		return nil, nil
	}
	known := all[:snapshotCount]
	actual := all[snapshotCount:]
	if len(actual) < minHoldoutEvents {
		return nil, nil
	}

	trajectories, err := h.engine.FutureTrajectories(ctx, known, snapshotCount, evalTopK)
	if err != nil {
		return nil, err
	}
	if len(trajectories) == 0 {
		return &Result{PatientID: patientID, Status: StatusNoPredictions}, nil
	}

	top := trajectories[0]
	res := h.score(patientID, actual, top)
	res.SnapshotEvents = snapshotCount
	res.TrajectoriesReturned = len(trajectories)
	return res, nil
}

// score compares the top-ranked trajectory's future against the actual one.
func (h *Harness) score(patientID string, actual []events.Event, top trajectory.Trajectory) *Result {
	actualLabels := events.Labels(actual)
	actualCategories := events.Categories(actual)

	predictedLabels := make([]string, len(top.Future))
	predictedCategories := make([]string, len(top.Future))
	for i, fe := range top.Future {
		predictedLabels[i] = fe.Label
		predictedCategories[i] = string(fe.Category)
	}

	// Temporal: actual events keep their raw day offsets, predictions are
	// anchor-relative deltas.
	actualTimed := make([]timedEvent, len(actual))
	for i, e := range actual {
		actualTimed[i] = timedEvent{label: e.Label, day: e.DayOffset}
	}
	predictedTimed := make([]timedEvent, len(top.Future))
	for i, fe := range top.Future {
		predictedTimed[i] = timedEvent{label: fe.Label, day: fe.DeltaDays}
	}
	temporal := temporalAccuracy(actualTimed, predictedTimed)

	actualSpan := 0
	if len(actual) > 1 {
		actualSpan = actual[len(actual)-1].DayOffset - actual[0].DayOffset
	}

	critical := criticalEvents(
		criticalSet(actualLabels),
		criticalSet(predictedLabels),
	)

	actualOutcome := profile.DetectOutcome(actualLabels)

	return &Result{
		PatientID: patientID,
		Status:    StatusOK,

		ActualFutureEvents: len(actual),
		PredictedEvents:    len(top.Future),
		Confidence:         top.Confidence,

		LabelJaccard:    jaccard(actualLabels, predictedLabels),
		CategoryJaccard: jaccard(actualCategories, predictedCategories),

		LCSRatio:         lcsRatio(actualLabels, predictedLabels),
		CategoryLCSRatio: lcsRatio(actualCategories, predictedCategories),

		TemporalMAE:   temporal.MAE,
		TemporalRMSE:  temporal.RMSE,
		MatchedEvents: temporal.Matched,
		TimeSpanDiff:  abs(actualSpan - top.Meta.TimeSpanDays),

		CriticalPrecision:      critical.Precision,
		CriticalRecall:         critical.Recall,
		ActualCriticalCount:    critical.ActualCount,
		PredictedCriticalCount: critical.PredictedCount,

		OutcomeMatch:     actualOutcome == top.Meta.Outcome,
		ActualOutcome:    actualOutcome,
		PredictedOutcome: top.Meta.Outcome,
	}
}

// criticalSet returns the distinct labels matching the evaluation critical
// vocabulary.
func criticalSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, label := range labels {
		if profile.CriticalEvaluation.MatchAny(label) {
			set[label] = struct{}{}
		}
	}
	return set
}
