package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"orbtest/config"
	"orbtest/internal/id"
	"orbtest/journal"
	"orbtest/market"
	"orbtest/orb"
	"orbtest/sim"
)

// RunResult ties together the artifacts of one two-pass experiment.
type RunResult struct {
	RunID string
	Dir   string
	Pass1 Pass1Result
	Pass2 Pass2Result
}

// RunExperiment executes both passes for cfg and lays the artifacts out
// under outDir/<run-id>/:
//
//	config_snapshot/experiment.yaml
//	pass1/entries.csv, pass1/run_metadata.json
//	pass2/trades.csv, pass2/equity.csv, pass2/metrics.json
//	report.org
//
// With a SQLite journal configured, the same records plus a run summary row
// go into the database instead of the pass2 CSVs.
func RunExperiment(cfg *config.Config, outDir string, log *zap.Logger) (*RunResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bars, stats, err := market.LoadCSV(cfg.Data.BarsPath)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	log.Info("bars loaded",
		zap.String("path", cfg.Data.BarsPath),
		zap.Int("rows", stats.Rows),
		zap.Int("bad_rows", stats.BadRows),
		zap.Int("duplicates", stats.Duplicates),
	)

	sess, err := market.NewSession()
	if err != nil {
		return nil, err
	}

	runID := runSlug(cfg.TestName) + "-" + id.New()
	runDir := filepath.Join(outDir, runID)
	for _, d := range []string{"config_snapshot", "pass1", "pass2"} {
		if err := os.MkdirAll(filepath.Join(runDir, d), 0755); err != nil {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
	}

	snapshotPath := filepath.Join(runDir, "config_snapshot", "experiment.yaml")
	if err := cfg.SaveToFile(snapshotPath); err != nil {
		return nil, err
	}

	p1, err := RunPass1(bars, sess, Pass1Config{
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
		return nil, fmt.Errorf("pass 1: %w", err)
	}

	entryRecs := make([]journal.EntryRecord, 0, len(p1.Entries))
	for _, e := range p1.Entries {
		entryRecs = append(entryRecs, entryRecord(e))
	}
	if err := journal.WriteEntriesCSV(filepath.Join(runDir, "pass1", "entries.csv"), entryRecs); err != nil {
		return nil, err
	}

	metadata := struct {
		RunID             string            `json:"run_id"`
		Strategy          string            `json:"strategy"`
		CountsPerDay      map[string]int    `json:"counts_per_day"`
		DaysWithNoEntries []string          `json:"days_with_no_entries"`
		SkippedDays       map[string]string `json:"skipped_days"`
		BarRows           int               `json:"bar_rows"`
		BadBarRows        int               `json:"bad_bar_rows"`
		DuplicateBars     int               `json:"duplicate_bars"`
	}{
		RunID:             runID,
		Strategy:          cfg.Strategy,
		CountsPerDay:      p1.CountsPerDay,
		DaysWithNoEntries: p1.DaysWithNoEntries,
		SkippedDays:       p1.SkippedDays,
		BarRows:           stats.Rows,
		BadBarRows:        stats.BadRows,
		DuplicateBars:     stats.Duplicates,
	}
	if err := journal.WriteJSON(filepath.Join(runDir, "pass1", "run_metadata.json"), metadata); err != nil {
		return nil, err
	}

	p2, err := RunPass2(p1.Entries, bars, sess, Pass2Config{
		Exit:            cfg.ExitParams(),
		StartingCash:    cfg.Account.StartingCash,
		AllocationPct:   cfg.Account.AllocationPctPerTrade,
		MaxDailyLossPct: cfg.Account.MaxDailyLossPct,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("pass 2: %w", err)
	}

	snapshot, err := os.ReadFile(snapshotPath)
	if err != nil {
		return nil, err
	}

	if err := persistPass2(cfg, runDir, runID, snapshot, entryRecs, p2); err != nil {
		return nil, err
	}
	if err := journal.WriteJSON(filepath.Join(runDir, "pass2", "metrics.json"), p2.Metrics); err != nil {
		return nil, err
	}

	report := RunReport{
		RunID:        runID,
		Created:      time.Now(),
		Strategy:     cfg.Strategy,
		Start:        cfg.StartDate,
		End:          cfg.EndDate,
		Basis:        cfg.Orb.BreakoutBasis,
		Dataset:      cfg.Data.BarsPath,
		StartingCash: cfg.Account.StartingCash,
		Metrics:      p2.Metrics,
		EntriesFound: len(p1.Entries),
		DaysSkipped:  len(p1.SkippedDays),
		Skipped:      p2.Skipped,
		Config:       snapshot,
	}
	if err := report.WriteOrg(filepath.Join(runDir, "report.org")); err != nil {
		return nil, err
	}

	log.Info("experiment complete",
		zap.String("run_id", runID),
		zap.String("dir", runDir),
		zap.Int("trades", p2.Processed),
	)
	return &RunResult{RunID: runID, Dir: runDir, Pass1: p1, Pass2: p2}, nil
}

// persistPass2 writes the simulation ledgers through the configured journal.
func persistPass2(cfg *config.Config, runDir, runID string, snapshot []byte, entries []journal.EntryRecord, p2 Pass2Result) error {
	var j journal.Journal
	var sqlj *journal.SQLite
	var err error

	switch cfg.Journal.Type {
	case "sqlite":
		sqlj, err = journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open sqlite journal: %w", err)
		}
		j = sqlj
	default:
		j, err = journal.NewCSV(filepath.Join(runDir, "pass2"))
		if err != nil {
			return fmt.Errorf("open csv journal: %w", err)
		}
	}
	defer j.Close()

	for _, e := range entries {
		if err := j.RecordEntry(e); err != nil {
			return err
		}
	}
	for _, t := range p2.Trades {
		if err := j.RecordTrade(tradeRecord(t)); err != nil {
			return err
		}
	}
	for _, p := range p2.Equity {
		if err := j.RecordEquity(journal.EquityRecord{TS: p.Time, Equity: p.Equity}); err != nil {
			return err
		}
	}

	if sqlj != nil {
		return sqlj.RecordRun(journal.RunRecord{
			RunID:          runID,
			Created:        time.Now(),
			Strategy:       cfg.Strategy,
			Start:          cfg.StartDate,
			End:            cfg.EndDate,
			TotalTrades:    p2.Metrics.TotalTrades,
			Wins:           p2.Metrics.Wins,
			Losses:         p2.Metrics.Losses,
			WinRate:        p2.Metrics.WinRate,
			TotalPnL:       p2.Metrics.TotalPnL,
			TotalReturnPct: p2.Metrics.TotalReturnPct,
			MaxDrawdownPct: p2.Metrics.MaxDrawdownPct,
			EndingEquity:   p2.Metrics.EndingEquity,
			Config:         snapshot,
		})
	}
	return nil
}

func entryRecord(e orb.Entry) journal.EntryRecord {
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

func tradeRecord(t sim.Trade) journal.TradeRecord {
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

// runSlug normalizes a test name into a directory-safe run id prefix.
func runSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "run"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "run"
	}
	return s
}
