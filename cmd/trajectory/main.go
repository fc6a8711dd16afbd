// Command trajectory predicts a patient's likely future clinical course by
// replaying the real subsequent events of similar patients.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajectory",
		Short: "Patient trajectory prediction by nearest-neighbor replay",
		Long: `trajectory indexes patient histories as profile embeddings, retrieves
similar patients by embedding distance, and replays their subsequent real
events as candidate futures. Predictions are statistical analogies, not
clinically validated forecasts.`,
	}

	rootCmd.PersistentFlags().String("config", "trajectory.yaml", "Path to YAML config")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSeedCmd(),
		newIndexCmd(),
		newPredictCmd(),
		newHistoryCmd(),
		newEvaluateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("trajectory version %s\n", version)
		},
	}
}

// newLogger builds the process logger at the configured level, writing
// human-readable output to stderr so stdout stays machine-parseable.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
