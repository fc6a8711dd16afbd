package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"patient-trajectory/internal/trajectory"
)

func newIndexCmd() *cobra.Command {
	var (
		batchSize int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed and index patient profiles",
		Long: `Linearizes every unindexed patient's history into a profile string,
embeds it, and upserts the vector into the index. Already-indexed
patients are skipped, so re-running only picks up new patients.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			indexed, err := a.engine.IndexPatients(context.Background(), batchSize, limit)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]int{
					"indexed": indexed,
					"total":   a.index.Len(),
				})
			}
			fmt.Printf("Indexed %d patients (%d total in index)\n", indexed, a.index.Len())
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", trajectory.DefaultIndexBatchSize, "Patients embedded per batch")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max patients to index this run (0 = all)")
	return cmd
}
