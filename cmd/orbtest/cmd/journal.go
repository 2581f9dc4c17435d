package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"orbtest/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query backtest journal data",
	Long: `Query and display backtest records from a SQLite journal database.

Subcommands:
  runs   - List recorded runs
  run    - Show one run's summary by ID
  trades - List recorded trades

Examples:
  orbtest journal runs --db ./runs.db
  orbtest journal run <run-id> --db ./runs.db`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List recorded trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalTrades,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./orbtest.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%-30s %s %s..%s trades=%d pnl=%.2f\n",
			r.RunID, r.Created.Format(time.DateOnly), r.Start, r.End, r.TotalTrades, r.TotalPnL)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Printf("Run %s (%s)\n", r.RunID, r.Strategy)
	fmt.Printf("  Range: %s .. %s\n", r.Start, r.End)
	fmt.Printf("  Trades: %d (%d wins / %d losses, %.1f%%)\n", r.TotalTrades, r.Wins, r.Losses, r.WinRate*100)
	fmt.Printf("  Net P/L: $%.2f (%.2f%%)\n", r.TotalPnL, r.TotalReturnPct*100)
	fmt.Printf("  Max drawdown: %.2f%%\n", r.MaxDrawdownPct*100)
	fmt.Printf("  Ending equity: $%.2f\n", r.EndingEquity)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	if len(trades) == 0 {
		fmt.Println("no trades recorded")
		return nil
	}
	for _, t := range trades {
		fmt.Printf("%s %s %-4s entry=%.2f exit=%.2f (%s) pnl=%.2f\n",
			t.TradeID, t.TradeDate, t.Direction, t.EntryPrice, t.ExitPrice, t.ExitReason, t.PnL)
	}
	return nil
}
