package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"patient-trajectory/internal/evaluate"
)

func newEvaluateCmd() *cobra.Command {
	var (
		sample      int
		snapshotPct float64
		seed        int64
		patientID   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Backtest predictions against held-out patient futures",
		Long: `Truncates each sampled patient's history at a snapshot point, predicts
from the truncated prefix, and scores the top prediction against the
events that actually followed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			jsonOut, _ := cmd.Flags().GetBool("json")

			if patientID != "" {
				res, err := a.harness.EvaluatePatient(ctx, patientID, snapshotPct)
				if err != nil {
					return err
				}
				if res == nil {
					return fmt.Errorf("patient %s excluded: history too short to backtest", patientID)
				}
				if jsonOut {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}
				printResult(res)
				return nil
			}

			sum, err := a.harness.Run(ctx, sample, snapshotPct, seed)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			printSummary(sum)
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 0, "Patients to evaluate (0 = all indexed)")
	cmd.Flags().Float64Var(&snapshotPct, "snapshot-pct", 0.5, "Fraction of history used as the prediction snapshot")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Sampling seed (0 = time-based)")
	cmd.Flags().StringVar(&patientID, "patient", "", "Evaluate a single patient instead of a sample")
	return cmd
}

func printResult(r *evaluate.Result) {
	fmt.Printf("Patient %s (%s)\n", r.PatientID, r.Status)
	fmt.Printf("  snapshot %d events, actual future %d, predicted %d (confidence %d%%)\n",
		r.SnapshotEvents, r.ActualFutureEvents, r.PredictedEvents, r.Confidence)
	fmt.Printf("  jaccard: label %.3f category %.3f\n", r.LabelJaccard, r.CategoryJaccard)
	fmt.Printf("  lcs:     label %.3f category %.3f\n", r.LCSRatio, r.CategoryLCSRatio)
	if r.TemporalMAE != nil {
		fmt.Printf("  timing:  MAE %.1fd RMSE %.1fd over %d matched events\n",
			*r.TemporalMAE, *r.TemporalRMSE, r.MatchedEvents)
	}
	if r.CriticalPrecision != nil {
		fmt.Printf("  critical precision %.3f", *r.CriticalPrecision)
		if r.CriticalRecall != nil {
			fmt.Printf(" recall %.3f", *r.CriticalRecall)
		}
		fmt.Println()
	} else if r.CriticalRecall != nil {
		fmt.Printf("  critical recall %.3f\n", *r.CriticalRecall)
	}
	fmt.Printf("  outcome: actual %s predicted %s match=%v\n",
		r.ActualOutcome, r.PredictedOutcome, r.OutcomeMatch)
}

func printSummary(s *evaluate.Summary) {
	fmt.Printf("Evaluation run %s\n", s.RunID)
	fmt.Printf("  indexed %d, sampled %d, evaluated %d, skipped %d, no predictions %d\n",
		s.Indexed, s.Sampled, s.Evaluated, s.Skipped, s.NoPredictions)
	if s.Evaluated == 0 {
		return
	}

	fmt.Printf("  avg jaccard:  label %.3f category %.3f\n", s.AvgLabelJaccard, s.AvgCategoryJaccard)
	fmt.Printf("  avg lcs:      label %.3f category %.3f\n", s.AvgLCSRatio, s.AvgCategoryLCSRatio)
	if s.AvgTemporalMAE != nil {
		fmt.Printf("  avg timing:   MAE %.1fd", *s.AvgTemporalMAE)
		if s.AvgTemporalRMSE != nil {
			fmt.Printf(" RMSE %.1fd", *s.AvgTemporalRMSE)
		}
		fmt.Println()
	}
	fmt.Printf("  avg span diff %.1fd\n", s.AvgTimeSpanDiff)
	if s.AvgCriticalPrecision != nil {
		fmt.Printf("  avg critical: precision %.3f", *s.AvgCriticalPrecision)
		if s.AvgCriticalRecall != nil {
			fmt.Printf(" recall %.3f", *s.AvgCriticalRecall)
		}
		fmt.Println()
	}
	fmt.Printf("  outcome accuracy %.1f%%, avg confidence %.1f%%\n",
		s.OutcomeAccuracy*100, s.AvgConfidence)

	if len(s.OutcomeBreakdown) > 0 {
		fmt.Println("  outcomes:")
		for outcome, st := range s.OutcomeBreakdown {
			fmt.Printf("    %-16s %d/%d correct\n", outcome, st.Correct, st.Total)
		}
	}
	if s.Best != nil {
		fmt.Printf("  best  %s (lcs %.3f)\n", s.Best.PatientID, s.Best.LCSRatio)
	}
	if s.Worst != nil {
		fmt.Printf("  worst %s (lcs %.3f)\n", s.Worst.PatientID, s.Worst.LCSRatio)
	}
}
