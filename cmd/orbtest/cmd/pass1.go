package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"orbtest/backtest"
	"orbtest/config"
	"orbtest/journal"
	"orbtest/market"
	"orbtest/orb"
)

var pass1Cmd = &cobra.Command{
	Use:   "pass1",
	Short: "Generate breakout entry signals from historical bars",
	Long: `Pass 1 scans each trading day in the configured date range, builds the
opening range from the first resampled candles, and records at most one
breakout entry per session into an entries ledger.

Example:
  orbtest pass1 --config experiment.yaml --out ./pass1`,
	RunE: runPass1,
}

var (
	p1ConfigPath string
	p1BarsPath   string
	p1OutDir     string
)

func init() {
	rootCmd.AddCommand(pass1Cmd)

	pass1Cmd.Flags().StringVarP(&p1ConfigPath, "config", "c", "", "path to experiment config (required)")
	pass1Cmd.Flags().StringVarP(&p1BarsPath, "bars", "b", "", "override bars CSV path from config")
	pass1Cmd.Flags().StringVarP(&p1OutDir, "out", "o", "./pass1", "output directory")

	pass1Cmd.MarkFlagRequired("config")
}

func runPass1(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.LoadFromFile(p1ConfigPath)
	if err != nil {
		return err
	}
	if p1BarsPath != "" {
		cfg.Data.BarsPath = p1BarsPath
	}

	bars, stats, err := market.LoadCSV(cfg.Data.BarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	sess, err := market.NewSession()
	if err != nil {
		return err
	}

	res, err := backtest.RunPass1(bars, sess, backtest.Pass1Config{
		Strategy:          cfg.Strategy,
		StartDate:         cfg.StartDate,
		EndDate:           cfg.EndDate,
		OrbCandles:        cfg.OrbCandles(),
		CandleInterval:    cfg.CandleInterval(),
		Basis:             orb.Basis(cfg.Orb.BreakoutBasis),
		ConfirmFullCandle: cfg.Orb.ConfirmFullCandle,
		MaxTradesPerDay:   cfg.Orb.MaxTradesPerDay,
		NoEntriesAfter:    cfg.Cutoff(),
	}, log)
	if err != nil {
		return err
	}

	recs := make([]journal.EntryRecord, 0, len(res.Entries))
	for _, e := range res.Entries {
		recs = append(recs, toEntryRecord(e))
	}

	entriesPath := filepath.Join(p1OutDir, "entries.csv")
	if err := journal.WriteEntriesCSV(entriesPath, recs); err != nil {
		return err
	}

	metadata := map[string]any{
		"strategy":             cfg.Strategy,
		"counts_per_day":       res.CountsPerDay,
		"days_with_no_entries": res.DaysWithNoEntries,
		"skipped_days":         res.SkippedDays,
		"bar_rows":             stats.Rows,
		"bad_bar_rows":         stats.BadRows,
		"duplicate_bars":       stats.Duplicates,
	}
	if err := journal.WriteJSON(filepath.Join(p1OutDir, "run_metadata.json"), metadata); err != nil {
		return err
	}

	fmt.Printf("Pass 1 complete: %d entries, %d days skipped\n", len(res.Entries), len(res.SkippedDays))
	fmt.Printf("  Entries: %s\n", entriesPath)
	return nil
}

func toEntryRecord(e orb.Entry) journal.EntryRecord {
	ctx, err := json.Marshal(e.Context)
	if err != nil {
		ctx = []byte("{}")
	}
	return journal.EntryRecord{
		TradeDate: e.TradeDate,
		EntryTS:   e.Time,
		Direction: string(e.Direction),
		RefPrice:  e.Price,
		Strategy:  e.Strategy,
		Context:   string(ctx),
	}
}
