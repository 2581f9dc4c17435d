package sim

import (
	"orbtest/internal/id"
	"orbtest/market"
	"orbtest/orb"
)

// Simulate walks the session's bars from the entry timestamp forward and
// returns the closed trade. It reports false when no bar at or after the
// entry exists (a data gap, not an error: the entry is skipped).
//
// The trade is OPEN at entry, may move to a partial-taken state when the
// partial scale-out is enabled, and always terminates: a stop, target or
// trailing hit closes it, and otherwise it closes at the last bar's close
// with reason session_end.
func Simulate(entry orb.Entry, bars market.Series, p ExitParams, allocation float64) (Trade, bool) {
	forward := bars.From(entry.Time)
	if len(forward) == 0 {
		return Trade{}, false
	}

	dir := entry.Direction
	entryPrice := entry.Price
	stop, target := resolveStops(entryPrice, dir, p)

	// Defaults if nothing triggers before the bars run out.
	exitTime := forward.Last().Time
	exitPrice := forward.Last().Close
	exitReason := ReasonSessionEnd

	// The trailing reference starts at the fixed stop and only ever moves
	// in the trade's favor. When partial scale-out is on, the runner trail
	// percentage is the one in effect.
	trail := stop
	trailPct := p.TrailPct
	if p.PartialTPEnabled {
		trailPct = p.RunnerTrailPct
	}

	partialTaken := false
	var partialPrice float64
	var partialTime = entry.Time

	for _, b := range forward {
		if p.PartialTPEnabled && !partialTaken {
			firstTP := firstTarget(entryPrice, dir, p.FirstTPPct)
			px, reason, hit := selectExit(dir, b, stop, firstTP, p.BothHitSameSecond)
			if hit {
				if reason == ReasonTakeProfit {
					partialTaken = true
					partialPrice = px
					partialTime = b.Time
					trail = px // runner stop tightens to the fill
					continue
				}
				exitTime, exitPrice, exitReason = b.Time, px, reason
				break
			}
		}

		if p.TrailingEnabled {
			trail = advanceTrail(dir, b, trail, trailPct)
		}

		px, reason, hit := selectExit(dir, b, trail, target, p.BothHitSameSecond)
		if hit {
			exitTime, exitPrice, exitReason = b.Time, px, reason
			break
		}
	}

	qty := 0.0
	if entryPrice != 0 {
		qty = allocation / entryPrice
	}

	pnl := qty * signedDelta(dir, entryPrice, exitPrice)

	t := Trade{
		ID:         id.New(),
		TradeDate:  entry.TradeDate,
		EntryTime:  entry.Time,
		ExitTime:   exitTime,
		Direction:  dir,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		ExitReason: exitReason,
		Allocation: allocation,
	}

	if partialTaken {
		partialPnL := qty * p.SplitPct * signedDelta(dir, entryPrice, partialPrice)
		runnerPnL := qty * (1 - p.SplitPct) * signedDelta(dir, entryPrice, exitPrice)
		pnl = partialPnL + runnerPnL

		pt := partialTime
		pp := partialPrice
		t.PartialExitTime = &pt
		t.PartialExitPrice = &pp
		t.PartialPnL = &partialPnL
		t.RunnerPnL = &runnerPnL
	}

	t.PnL = pnl
	if allocation != 0 {
		t.ReturnPct = pnl / allocation
	}
	return t, true
}

// resolveStops derives the fixed stop and full take-profit prices from the
// entry. For CALL: stop below, target above; for PUT the signs mirror.
func resolveStops(entryPrice float64, dir orb.Direction, p ExitParams) (stop, target float64) {
	if dir == orb.Put {
		return entryPrice * (1 + p.StopLossPct), entryPrice * (1 - p.TakeProfitPct)
	}
	return entryPrice * (1 - p.StopLossPct), entryPrice * (1 + p.TakeProfitPct)
}

func firstTarget(entryPrice float64, dir orb.Direction, firstTPPct float64) float64 {
	if dir == orb.Put {
		return entryPrice * (1 - firstTPPct)
	}
	return entryPrice * (1 + firstTPPct)
}

// selectExit evaluates the stop/target hit test on a bar's high/low. When
// both trigger on the same bar the rule decides which fill wins.
func selectExit(dir orb.Direction, b market.Bar, stop, target float64, bothHitRule string) (price float64, reason string, hit bool) {
	var tpHit, slHit bool
	if dir == orb.Call {
		tpHit = b.High >= target
		slHit = b.Low <= stop
	} else {
		tpHit = b.Low <= target
		slHit = b.High >= stop
	}

	switch {
	case tpHit && slHit:
		if bothHitRule == BothHitTPFirst {
			return target, ReasonTakeProfit, true
		}
		return stop, ReasonStopLoss, true
	case tpHit:
		return target, ReasonTakeProfit, true
	case slHit:
		return stop, ReasonStopLoss, true
	}
	return 0, "", false
}

// advanceTrail ratchets the trailing stop toward favorable movement; it
// never loosens.
func advanceTrail(dir orb.Direction, b market.Bar, cur, trailPct float64) float64 {
	if dir == orb.Call {
		if candidate := b.High * (1 - trailPct); candidate > cur {
			return candidate
		}
		return cur
	}
	if candidate := b.Low * (1 + trailPct); candidate < cur {
		return candidate
	}
	return cur
}
