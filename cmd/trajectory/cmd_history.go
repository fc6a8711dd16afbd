package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var showProfile bool

	cmd := &cobra.Command{
		Use:   "history <patient-id>",
		Short: "Show a patient's event history and linearized profile",
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

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(history)
			}

			fmt.Printf("Patient %s: %d events\n", args[0], len(history))
			for _, ev := range history {
				fmt.Printf("  day %-5d [%s] %s\n", ev.DayOffset, ev.Category, ev.Label)
			}

			if showProfile {
				fmt.Println("\nProfile:")
				fmt.Println(a.lin.Linearize(history, ""))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showProfile, "profile", false, "Also print the linearized profile string")
	return cmd
}
