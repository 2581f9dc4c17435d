package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbtest/backtest"
	"orbtest/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a complete two-pass experiment",
	Long: `Run executes pass 1 and pass 2 back to back and lays out a reproducible
run directory: config snapshot, entries ledger, trades, equity curve,
metrics and an org-mode report.

Example:
  orbtest run --config experiment.yaml --out ./runs`,
	RunE: runExperiment,
}

var (
	runConfigPath string
	runOutDir     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to experiment config (required)")
	runCmd.Flags().StringVarP(&runOutDir, "out", "o", "./runs", "root directory for run outputs")

	runCmd.MarkFlagRequired("config")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	res, err := backtest.RunExperiment(cfg, runOutDir, log)
	if err != nil {
		return err
	}

	m := res.Pass2.Metrics
	fmt.Printf("Run complete: %s\n", res.RunID)
	fmt.Printf("  Directory: %s\n", res.Dir)
	fmt.Printf("  Entries: %d, trades: %d\n", len(res.Pass1.Entries), m.TotalTrades)
	fmt.Printf("  Net P/L: $%.2f (%.2f%%)\n", m.TotalPnL, m.TotalReturnPct*100)
	fmt.Printf("  Max drawdown: %.2f%%\n", m.MaxDrawdownPct*100)
	return nil
}
