package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orbtest/sim"
)

func closedTrade(exitOffset time.Duration, pnl float64) sim.Trade {
	base := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	return sim.Trade{
		ID:        "T",
		EntryTime: base,
		ExitTime:  base.Add(exitOffset),
		PnL:       pnl,
	}
}

func TestBuildEquityCurveFolds(t *testing.T) {
	t.Parallel()

	trades := []sim.Trade{
		closedTrade(2*time.Hour, -50),
		closedTrade(1*time.Hour, 100),
		closedTrade(3*time.Hour, 25),
	}

	curve := BuildEquityCurve(trades, 10000)
	assert.Len(t, curve, 3)

	// Ordered by exit time regardless of input order.
	assert.InDelta(t, 10100, curve[0].Equity, 1e-9)
	assert.InDelta(t, 10050, curve[1].Equity, 1e-9)
	assert.InDelta(t, 10075, curve[2].Equity, 1e-9)
	assert.True(t, curve[0].Time.Before(curve[1].Time))

	// Final point equals starting cash plus total pnl.
	assert.InDelta(t, 10000+100-50+25, curve[2].Equity, 1e-9)
}

func TestBuildEquityCurveEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildEquityCurve(nil, 10000))
}

func TestBuildEquityCurveDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	trades := []sim.Trade{
		closedTrade(2*time.Hour, 1),
		closedTrade(1*time.Hour, 2),
	}
	first := trades[0].ExitTime

	BuildEquityCurve(trades, 100)
	assert.True(t, trades[0].ExitTime.Equal(first))
}
