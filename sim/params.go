// Package sim walks a single entry signal forward bar-by-bar, applying
// stop-loss, take-profit, trailing and partial scale-out rules, and emits
// the closed trade.
package sim

import "fmt"

// Exit reasons recorded on closed trades.
const (
	ReasonTakeProfit = "take_profit"
	ReasonStopLoss   = "stop_loss"
	ReasonSessionEnd = "session_end"
)

// Same-bar tie-break policies when stop and target both trigger.
const (
	BothHitStopFirst = "stop_first"
	BothHitTPFirst   = "tp_first"
)

// Take-profit modes. Only the percent mode affects simulation; the value is
// carried through run snapshots for reproducibility.
const TakeProfitModePercent = "percent"

// ExitParams configures the per-trade exit state machine.
type ExitParams struct {
	StopLossPct    float64
	TakeProfitMode string
	TakeProfitPct  float64

	TrailingEnabled bool
	TrailPct        float64

	// Partial scale-out: close SplitPct of the position at the first
	// target (entry adjusted by FirstTPPct) and trail the runner with
	// RunnerTrailPct. When enabled, RunnerTrailPct governs trailing for
	// the whole trade; otherwise TrailPct does.
	PartialTPEnabled bool
	SplitPct         float64
	FirstTPPct       float64
	RunnerTrailPct   float64

	BothHitSameSecond string
}

// Validate rejects parameter combinations the simulator cannot honor.
func (p ExitParams) Validate() error {
	if p.StopLossPct <= 0 {
		return fmt.Errorf("stop_loss_pct must be positive")
	}
	if p.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive")
	}
	switch p.BothHitSameSecond {
	case BothHitStopFirst, BothHitTPFirst:
	default:
		return fmt.Errorf("both_hit_same_second must be %q or %q", BothHitStopFirst, BothHitTPFirst)
	}
	if p.TrailingEnabled && p.TrailPct <= 0 && !p.PartialTPEnabled {
		return fmt.Errorf("trail_pct must be positive when trailing is enabled")
	}
	if p.PartialTPEnabled {
		if p.SplitPct <= 0 || p.SplitPct >= 1 {
			return fmt.Errorf("split_pct must be in (0, 1)")
		}
		if p.FirstTPPct <= 0 {
			return fmt.Errorf("first_tp_pct must be positive")
		}
		if p.TrailingEnabled && p.RunnerTrailPct <= 0 {
			return fmt.Errorf("runner_trail_pct must be positive when trailing is enabled")
		}
	}
	return nil
}
