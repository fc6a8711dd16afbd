package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"patient-trajectory/internal/config"
	"patient-trajectory/internal/eventstore"
	"patient-trajectory/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var (
		count    int
		seedSalt int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with a synthetic demo cohort",
		Long: `Generates synthetic patients across several clinical course archetypes
so indexing, prediction, and evaluation can be tried without real data.
Re-running skips patients that already exist. Only the SQLite backend is
writable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != "sqlite" {
				return fmt.Errorf("seed requires the sqlite backend, configured backend is %q", cfg.Store.Backend)
			}

			store, err := eventstore.OpenSQLite(cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := seed.NewSeeder(store).SeedCohort(context.Background(), count, seedSalt)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d patients (%d already present) into %s\n",
				len(res.Added), len(res.Skipped), cfg.Store.DSN)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 200, "Cohort size")
	cmd.Flags().Int64Var(&seedSalt, "seed", 1, "Random seed for generated histories")
	return cmd
}
