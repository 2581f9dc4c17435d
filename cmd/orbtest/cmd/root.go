package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "orbtest",
	Short: "An opening-range-breakout options backtester",
	Long: `Orbtest is a two-pass backtester for an intraday opening-range-breakout
options strategy over historical 1-minute bars.

It provides tools for:
  - Generating breakout entry signals from an opening range (pass 1)
  - Simulating the signals into a trade ledger, equity curve and metrics (pass 2)
  - Running complete experiments with reproducible run directories
  - Journaling results to CSV files or a SQLite database`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger; --verbose switches on debug output.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
