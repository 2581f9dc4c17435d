// Package backtest orchestrates the two-pass pipeline: pass 1 turns
// historical bars into an entries ledger, pass 2 simulates the ledger into
// trades, an equity curve and summary metrics, and the experiment runner
// ties both together into a reproducible run directory.
package backtest

import (
	"sort"
	"time"

	"orbtest/sim"
)

// EquityPoint is account equity immediately after a trade closed.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// BuildEquityCurve folds closed trades into a running-equity series starting
// from startingCash. Trades are ordered by exit time; the input slice is not
// modified. An empty ledger yields an empty curve.
func BuildEquityCurve(trades []sim.Trade, startingCash float64) []EquityPoint {
	if len(trades) == 0 {
		return nil
	}

	ordered := make([]sim.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})

	curve := make([]EquityPoint, 0, len(ordered))
	equity := startingCash
	for _, t := range ordered {
		equity += t.PnL
		curve = append(curve, EquityPoint{Time: t.ExitTime, Equity: equity})
	}
	return curve
}
