package sim

import (
	"time"

	"orbtest/orb"
)

// Trade is one closed simulated trade. Immutable once returned by Simulate.
// Partial fields are nil unless a partial leg was taken; when set,
// PnL == *PartialPnL + *RunnerPnL.
type Trade struct {
	ID         string
	TradeDate  string
	EntryTime  time.Time
	ExitTime   time.Time
	Direction  orb.Direction
	EntryPrice float64
	ExitPrice  float64
	ExitReason string
	Allocation float64
	PnL        float64
	ReturnPct  float64

	PartialExitTime  *time.Time
	PartialExitPrice *float64
	PartialPnL       *float64
	RunnerPnL        *float64
}

// signedDelta returns exit-entry oriented so that favorable movement is
// positive: the sign flips for PUT.
func signedDelta(dir orb.Direction, entry, exit float64) float64 {
	if dir == orb.Put {
		return entry - exit
	}
	return exit - entry
}
