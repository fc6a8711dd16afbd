package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"patient-trajectory/internal/trajectory"
)

func newPredictCmd() *cobra.Command {
	var (
		snapshot int
		topK     int
	)

	cmd := &cobra.Command{
		Use:   "predict <patient-id>",
		Short: "Predict a patient's future events from similar patients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			history, err := a.store.GetEvents(ctx, args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return fmt.Errorf("no events for patient %s", args[0])
			}

			trajs, err := a.engine.FutureTrajectories(ctx, history, snapshot, topK)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(trajs)
			}

			printTrajectories(args[0], len(history), snapshot, trajs)
			return nil
		},
	}

	cmd.Flags().IntVar(&snapshot, "snapshot", 0, "Use only the first N events as the query (0 = full history)")
	cmd.Flags().IntVar(&topK, "top-k", trajectory.DefaultTopK, "Number of candidate trajectories")
	return cmd
}

func printTrajectories(patientID string, historyLen, snapshot int, trajs []trajectory.Trajectory) {
	fmt.Printf("Patient %s: %d events in history", patientID, historyLen)
	if snapshot > 0 && snapshot < historyLen {
		fmt.Printf(" (predicting from first %d)", snapshot)
	}
	fmt.Println()

	if len(trajs) == 0 {
		fmt.Println("No candidate trajectories found.")
		return
	}

	for i, t := range trajs {
		fmt.Printf("\n--- Trajectory %d (confidence %d%%, source %s, outcome %s) ---\n",
			i+1, t.Confidence, t.Meta.SourcePatientID, t.Meta.Outcome)
		fmt.Printf("    %d future events over %d days\n", t.Meta.EventCount, t.Meta.TimeSpanDays)
		for _, ev := range t.Future {
			fmt.Printf("    T+%-4d [%s] %s\n", ev.DeltaDays, ev.Category, ev.Label)
		}
	}
}
