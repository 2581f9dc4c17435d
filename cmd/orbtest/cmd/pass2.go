package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"orbtest/backtest"
	"orbtest/config"
	"orbtest/journal"
	"orbtest/market"
	"orbtest/orb"
	"orbtest/sim"
)

var pass2Cmd = &cobra.Command{
	Use:   "pass2",
	Short: "Simulate an entries ledger into trades, equity and metrics",
	Long: `Pass 2 replays a pass 1 entries ledger through the trade simulator,
compounding running cash across days, and writes the trades ledger,
equity curve and summary metrics.

Example:
  orbtest pass2 --config experiment.yaml --entries ./pass1/entries.csv --out ./pass2`,
	RunE: runPass2,
}

var (
	p2ConfigPath  string
	p2EntriesPath string
	p2BarsPath    string
	p2OutDir      string
)

func init() {
	rootCmd.AddCommand(pass2Cmd)

	pass2Cmd.Flags().StringVarP(&p2ConfigPath, "config", "c", "", "path to experiment config (required)")
	pass2Cmd.Flags().StringVarP(&p2EntriesPath, "entries", "e", "", "path to entries ledger CSV (required)")
	pass2Cmd.Flags().StringVarP(&p2BarsPath, "bars", "b", "", "override bars CSV path from config")
	pass2Cmd.Flags().StringVarP(&p2OutDir, "out", "o", "./pass2", "output directory")

	pass2Cmd.MarkFlagRequired("config")
	pass2Cmd.MarkFlagRequired("entries")
}

func runPass2(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.LoadFromFile(p2ConfigPath)
	if err != nil {
		return err
	}
	if p2BarsPath != "" {
		cfg.Data.BarsPath = p2BarsPath
	}

	recs, err := journal.ReadEntriesCSV(p2EntriesPath)
	if err != nil {
		return err
	}
	entries := make([]orb.Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, orb.Entry{
			TradeDate: r.TradeDate,
			Time:      r.EntryTS,
			Direction: orb.Direction(r.Direction),
			Price:     r.RefPrice,
			Strategy:  r.Strategy,
		})
	}

	bars, _, err := market.LoadCSV(cfg.Data.BarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	sess, err := market.NewSession()
	if err != nil {
		return err
	}

	res, err := backtest.RunPass2(entries, bars, sess, backtest.Pass2Config{
		Exit:            cfg.ExitParams(),
		StartingCash:    cfg.Account.StartingCash,
		AllocationPct:   cfg.Account.AllocationPctPerTrade,
		MaxDailyLossPct: cfg.Account.MaxDailyLossPct,
	}, log)
	if err != nil {
		return err
	}

	if err := persistPass2Artifacts(cfg, res); err != nil {
		return err
	}

	fmt.Printf("Pass 2 complete: %d trades simulated\n", res.Processed)
	fmt.Printf("  Net P/L: $%.2f\n", res.Metrics.TotalPnL)
	fmt.Printf("  Ending equity: $%.2f\n", res.Metrics.EndingEquity)
	fmt.Printf("  Win rate: %.1f%%\n", res.Metrics.WinRate*100)
	return nil
}

func persistPass2Artifacts(cfg *config.Config, res backtest.Pass2Result) error {
	var j journal.Journal
	var err error

	if cfg.Journal.Type == "sqlite" {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	} else {
		j, err = journal.NewCSV(p2OutDir)
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	for _, t := range res.Trades {
		if err := j.RecordTrade(toTradeRecord(t)); err != nil {
			return err
		}
	}
	for _, p := range res.Equity {
		if err := j.RecordEquity(journal.EquityRecord{TS: p.Time, Equity: p.Equity}); err != nil {
			return err
		}
	}

	return journal.WriteJSON(filepath.Join(p2OutDir, "metrics.json"), res.Metrics)
}

func toTradeRecord(t sim.Trade) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:          t.ID,
		TradeDate:        t.TradeDate,
		EntryTS:          t.EntryTime,
		ExitTS:           t.ExitTime,
		Direction:        string(t.Direction),
		EntryPrice:       t.EntryPrice,
		ExitPrice:        t.ExitPrice,
		ExitReason:       t.ExitReason,
		Allocation:       t.Allocation,
		PnL:              t.PnL,
		ReturnPct:        t.ReturnPct,
		PartialExitTS:    t.PartialExitTime,
		PartialExitPrice: t.PartialExitPrice,
		PartialPnL:       t.PartialPnL,
		RunnerPnL:        t.RunnerPnL,
	}
}
