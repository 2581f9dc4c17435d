package backtest

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"orbtest/market"
	"orbtest/orb"
	"orbtest/sim"
)

// Entry-skip reasons tallied in pass 2 output.
const (
	SkipNoForwardBars  = "no_forward_bars"
	SkipZeroAllocation = "non_positive_allocation"
	SkipDailyLossLimit = "daily_loss_limit"
)

// Pass2Config drives trade simulation and account accounting.
type Pass2Config struct {
	Exit sim.ExitParams

	StartingCash  float64
	AllocationPct float64 // fraction of running cash committed per trade

	// MaxDailyLossPct stops simulating a day's remaining entries once the
	// day's accumulated losses reach this fraction of starting cash.
	// Non-positive disables the breaker.
	MaxDailyLossPct float64
}

func (c Pass2Config) validate() error {
	if c.StartingCash <= 0 {
		return fmt.Errorf("starting cash must be positive")
	}
	if c.AllocationPct <= 0 || c.AllocationPct > 1 {
		return fmt.Errorf("allocation pct must be in (0, 1]")
	}
	return c.Exit.Validate()
}

// Pass2Result is the simulation output.
type Pass2Result struct {
	Trades  []sim.Trade
	Equity  []EquityPoint
	Metrics Metrics

	Processed int
	Skipped   map[string]int // reason -> count
}

// RunPass2 simulates the entries ledger in strict chronological order,
// compounding running cash across days. Entries that cannot be simulated
// are tallied and skipped rather than failing the batch. An empty ledger
// yields empty, well-formed outputs.
func RunPass2(entries []orb.Entry, bars market.Series, sess *market.Session, cfg Pass2Config, log *zap.Logger) (Pass2Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		return Pass2Result{}, err
	}

	res := Pass2Result{Skipped: map[string]int{}}

	byDate := map[string][]orb.Entry{}
	var dates []string
	for _, e := range entries {
		if _, seen := byDate[e.TradeDate]; !seen {
			dates = append(dates, e.TradeDate)
		}
		byDate[e.TradeDate] = append(byDate[e.TradeDate], e)
	}
	sort.Strings(dates)

	cash := cfg.StartingCash
	lossLimit := cfg.StartingCash * cfg.MaxDailyLossPct

	for _, date := range dates {
		dayBars, err := sess.Day(bars, date)
		if err != nil {
			return Pass2Result{}, err
		}

		dayLoss := 0.0
		halted := false

		for _, entry := range byDate[date] {
			if halted {
				res.Skipped[SkipDailyLossLimit]++
				continue
			}

			allocation := cash * cfg.AllocationPct
			if allocation <= 0 {
				res.Skipped[SkipZeroAllocation]++
				continue
			}

			trade, ok := sim.Simulate(entry, dayBars, cfg.Exit, allocation)
			if !ok {
				res.Skipped[SkipNoForwardBars]++
				log.Debug("entry has no forward bars",
					zap.String("date", date),
					zap.Time("entry", entry.Time),
				)
				continue
			}

			res.Trades = append(res.Trades, trade)
			res.Processed++
			cash += trade.PnL
			if trade.PnL < 0 {
				dayLoss += trade.PnL
			}

			if cfg.MaxDailyLossPct > 0 && -dayLoss >= lossLimit {
				halted = true
				log.Info("daily loss limit reached",
					zap.String("date", date),
					zap.Float64("day_loss", dayLoss),
				)
			}
		}
	}

	res.Equity = BuildEquityCurve(res.Trades, cfg.StartingCash)
	res.Metrics = ComputeMetrics(res.Trades, res.Equity, cfg.StartingCash)

	log.Info("pass 2 complete",
		zap.Int("trades", res.Processed),
		zap.Float64("total_pnl", res.Metrics.TotalPnL),
		zap.Float64("ending_equity", res.Metrics.EndingEquity),
	)
	return res, nil
}
