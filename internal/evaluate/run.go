package evaluate

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"patient-trajectory/internal/profile"
)

// OutcomeStats counts evaluations per actual-outcome class.
type OutcomeStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// PatientScore names a patient and its label sequence similarity, used for
// the best/worst callouts.
type PatientScore struct {
	PatientID string  `json:"patient_id"`
	LCSRatio  float64 `json:"lcs_ratio"`
}

// Summary aggregates an evaluation run. Averaged metric pointers are nil
// when the metric was unavailable for every evaluated patient.
type Summary struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	SnapshotPct float64   `json:"snapshot_pct"`

	Indexed       int `json:"indexed_patients"`
	Sampled       int `json:"sampled"`
	Evaluated     int `json:"evaluated"`
	Skipped       int `json:"skipped"`
	NoPredictions int `json:"no_predictions"`

	AvgLabelJaccard    float64 `json:"avg_label_jaccard"`
	AvgCategoryJaccard float64 `json:"avg_category_jaccard"`

	AvgLCSRatio         float64 `json:"avg_lcs_ratio"`
	AvgCategoryLCSRatio float64 `json:"avg_category_lcs_ratio"`

	AvgTemporalMAE  *float64 `json:"avg_temporal_mae,omitempty"`
	AvgTemporalRMSE *float64 `json:"avg_temporal_rmse,omitempty"`
	AvgTimeSpanDiff float64  `json:"avg_time_span_diff"`

	AvgCriticalPrecision *float64 `json:"avg_critical_precision,omitempty"`
	AvgCriticalRecall    *float64 `json:"avg_critical_recall,omitempty"`

	OutcomeAccuracy  float64                          `json:"outcome_accuracy"`
	AvgConfidence    float64                          `json:"avg_confidence"`
	OutcomeBreakdown map[profile.Outcome]OutcomeStats `json:"outcome_breakdown"`

	Best  *PatientScore `json:"best,omitempty"`
	Worst *PatientScore `json:"worst,omitempty"`

	Results []Result `json:"results"`
}

// Run evaluates a random sample of the indexed population and aggregates
// per-metric-family means. Patients where a metric is unavailable are
// skipped for that metric's mean, never averaged in as zero.
//
// seed fixes the sampling order; pass 0 for a time-based seed.
func (h *Harness) Run(ctx context.Context, sampleSize int, snapshotPct float64, seed int64) (*Summary, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ids := h.index.IDs()
	sort.Strings(ids) // stable base order so a fixed seed reproduces the sample
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if sampleSize > 0 && len(ids) > sampleSize {
		ids = ids[:sampleSize]
	}

	sum := &Summary{
		RunID:            uuid.NewString(),
		StartedAt:        time.Now(),
		SnapshotPct:      snapshotPct,
		Indexed:          h.index.Len(),
		Sampled:          len(ids),
		OutcomeBreakdown: make(map[profile.Outcome]OutcomeStats),
	}

	h.log.Info().
		Str("run_id", sum.RunID).
		Int("sampled", len(ids)).
		Float64("snapshot_pct", snapshotPct).
		Msg("starting evaluation run")

	for _, pid := range ids {
		res, err := h.EvaluatePatient(ctx, pid, snapshotPct)
		if err != nil {
			return nil, err
		}
		switch {
		case res == nil:
			sum.Skipped++
		case res.Status == StatusNoPredictions:
			sum.NoPredictions++
			h.log.Debug().Str("patient", pid).Msg("no predictions")
		default:
			sum.Results = append(sum.Results, *res)
			h.log.Debug().
				Str("patient", pid).
				Float64("lcs", res.LCSRatio).
				Float64("jaccard", res.LabelJaccard).
				Bool("outcome_match", res.OutcomeMatch).
				Msg("evaluated patient")
		}
	}

	sum.Evaluated = len(sum.Results)
	aggregate(sum)

	h.log.Info().
		Str("run_id", sum.RunID).
		Int("evaluated", sum.Evaluated).
		Int("skipped", sum.Skipped).
		Int("no_predictions", sum.NoPredictions).
		Msg("evaluation run done")

	return sum, nil
}

// aggregate fills the summary means from the collected results.
func aggregate(sum *Summary) {
	if len(sum.Results) == 0 {
		return
	}
	n := float64(len(sum.Results))

	var labelJ, catJ, lcs, catLCS, spanDiff, conf float64
	outcomeHits := 0
	for i := range sum.Results {
		r := &sum.Results[i]
		labelJ += r.LabelJaccard
		catJ += r.CategoryJaccard
		lcs += r.LCSRatio
		catLCS += r.CategoryLCSRatio
		spanDiff += float64(r.TimeSpanDiff)
		conf += float64(r.Confidence)
		if r.OutcomeMatch {
			outcomeHits++
		}

		stats := sum.OutcomeBreakdown[r.ActualOutcome]
		stats.Total++
		if r.OutcomeMatch {
			stats.Correct++
		}
		sum.OutcomeBreakdown[r.ActualOutcome] = stats

		if sum.Best == nil || r.LCSRatio > sum.Best.LCSRatio {
			sum.Best = &PatientScore{PatientID: r.PatientID, LCSRatio: r.LCSRatio}
		}
		if sum.Worst == nil || r.LCSRatio < sum.Worst.LCSRatio {
			sum.Worst = &PatientScore{PatientID: r.PatientID, LCSRatio: r.LCSRatio}
		}
	}

	sum.AvgLabelJaccard = labelJ / n
	sum.AvgCategoryJaccard = catJ / n
	sum.AvgLCSRatio = lcs / n
	sum.AvgCategoryLCSRatio = catLCS / n
	sum.AvgTimeSpanDiff = spanDiff / n
	sum.OutcomeAccuracy = float64(outcomeHits) / n
	sum.AvgConfidence = conf / n

	sum.AvgTemporalMAE = meanOf(sum.Results, func(r *Result) *float64 { return r.TemporalMAE })
	sum.AvgTemporalRMSE = meanOf(sum.Results, func(r *Result) *float64 { return r.TemporalRMSE })
	sum.AvgCriticalPrecision = meanOf(sum.Results, func(r *Result) *float64 { return r.CriticalPrecision })
	sum.AvgCriticalRecall = meanOf(sum.Results, func(r *Result) *float64 { return r.CriticalRecall })
}

// meanOf averages an optional metric over the results that report it.
// Returns nil when no result does.
func meanOf(results []Result, get func(*Result) *float64) *float64 {
	var total float64
	count := 0
	for i := range results {
		if v := get(&results[i]); v != nil {
			total += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := total / float64(count)
	return &mean
}
