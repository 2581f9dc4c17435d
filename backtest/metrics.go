package backtest

import "orbtest/sim"

// Metrics summarizes a trade ledger. A trade with pnl <= 0 counts as a loss.
type Metrics struct {
	TotalTrades    int     `json:"total_trades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	EndingEquity   float64 `json:"ending_equity"`
}

// ComputeMetrics reduces the ledger and its equity curve to summary numbers.
// For an empty ledger win rate and drawdown are 0 and ending equity equals
// starting cash.
func ComputeMetrics(trades []sim.Trade, curve []EquityPoint, startingCash float64) Metrics {
	m := Metrics{EndingEquity: startingCash}

	for _, t := range trades {
		m.TotalTrades++
		m.TotalPnL += t.PnL
		if t.PnL > 0 {
			m.Wins++
		} else {
			m.Losses++
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.Wins) / float64(m.TotalTrades)
	}
	if startingCash != 0 {
		m.TotalReturnPct = m.TotalPnL / startingCash
	}
	m.EndingEquity = startingCash + m.TotalPnL
	m.MaxDrawdownPct = maxDrawdown(curve)
	return m
}

// maxDrawdown is the most negative (equity - running max) / running max over
// the curve; 0 when the curve is empty or never dips.
func maxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0].Equity
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := (p.Equity - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
