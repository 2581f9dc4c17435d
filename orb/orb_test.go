package orb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orbtest/market"
)

var t0 = time.Date(2025, 1, 2, 14, 35, 0, 0, time.UTC) // label of the first 5m candle

// candle builds a right-labeled 5-minute candle i intervals after t0.
func candle(i int, o, h, l, c float64) market.Bar {
	return market.Bar{
		Time:  t0.Add(time.Duration(i) * 5 * time.Minute),
		Open:  o,
		High:  h,
		Low:   l,
		Close: c,
	}
}

func anchorCandles() market.Series {
	// First three candles span [100, 101].
	return market.Series{
		candle(0, 100.2, 100.9, 100.0, 100.5),
		candle(1, 100.5, 101.0, 100.3, 100.8),
		candle(2, 100.8, 100.9, 100.1, 100.4),
	}
}

func TestCalcRange(t *testing.T) {
	t.Parallel()

	r, ok := CalcRange(anchorCandles(), 3)
	assert.True(t, ok)
	assert.InDelta(t, 101.0, r.High, 1e-9)
	assert.InDelta(t, 100.0, r.Low, 1e-9)
	assert.True(t, r.End.Equal(t0.Add(10*time.Minute)))
	assert.GreaterOrEqual(t, r.High, r.Low)
}

func TestCalcRangeInsufficientCandles(t *testing.T) {
	t.Parallel()

	_, ok := CalcRange(anchorCandles()[:2], 3)
	assert.False(t, ok)
	_, ok = CalcRange(nil, 3)
	assert.False(t, ok)
}

func TestFindEntryCallOnCloseBasis(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		candle(3, 100.9, 103.2, 100.7, 103.0),
	)
	r, ok := CalcRange(candles, 3)
	assert.True(t, ok)

	e, ok := FindEntry(candles, r, Params{Basis: BasisClose})
	assert.True(t, ok)
	assert.Equal(t, Call, e.Direction)
	assert.InDelta(t, 103.0, e.Price, 1e-9)
	assert.True(t, e.Time.Equal(candles[3].Time))
	assert.True(t, e.Time.After(r.End))
	assert.Equal(t, "close", e.Context["breakout_basis"])
}

func TestFindEntryPutOnCloseBasis(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		candle(3, 100.2, 100.5, 99.0, 99.2),
	)
	r, _ := CalcRange(candles, 3)

	e, ok := FindEntry(candles, r, Params{Basis: BasisClose})
	assert.True(t, ok)
	assert.Equal(t, Put, e.Direction)
	assert.InDelta(t, 99.2, e.Price, 1e-9)
}

func TestFindEntryNoBreakout(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		candle(3, 100.4, 100.9, 100.2, 100.6),
		candle(4, 100.6, 100.8, 100.1, 100.3),
	)
	r, _ := CalcRange(candles, 3)

	_, ok := FindEntry(candles, r, Params{Basis: BasisClose})
	assert.False(t, ok)
}

func TestFindEntryConfirmFullCandleSkipsGapThrough(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		// Opens already above the range high: gap-through, not confirmed.
		candle(3, 101.5, 102.4, 101.2, 102.0),
		// Opens below the level and closes above: confirmed.
		candle(4, 100.9, 103.0, 100.8, 102.8),
	)
	r, _ := CalcRange(candles, 3)

	e, ok := FindEntry(candles, r, Params{Basis: BasisClose, ConfirmFullCandle: true})
	assert.True(t, ok)
	assert.True(t, e.Time.Equal(candles[4].Time))
	assert.InDelta(t, 102.8, e.Price, 1e-9)

	// Without confirmation the gap-through candle wins.
	e, ok = FindEntry(candles, r, Params{Basis: BasisClose})
	assert.True(t, ok)
	assert.True(t, e.Time.Equal(candles[3].Time))
}

func TestFindEntryWickBasis(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		// Close stays inside the range but the high pokes out.
		candle(3, 100.5, 101.4, 100.4, 100.9),
	)
	r, _ := CalcRange(candles, 3)

	_, ok := FindEntry(candles, r, Params{Basis: BasisClose})
	assert.False(t, ok)

	e, ok := FindEntry(candles, r, Params{Basis: BasisWick})
	assert.True(t, ok)
	assert.Equal(t, Call, e.Direction)
	assert.InDelta(t, 101.4, e.Price, 1e-9)
}

func TestFindEntryWickBothEdgesCallWins(t *testing.T) {
	t.Parallel()

	// One wide candle breaches both edges; CALL is checked first and wins.
	candles := append(anchorCandles(),
		candle(3, 100.5, 101.8, 99.1, 100.4),
	)
	r, _ := CalcRange(candles, 3)

	e, ok := FindEntry(candles, r, Params{Basis: BasisWick})
	assert.True(t, ok)
	assert.Equal(t, Call, e.Direction)
	assert.InDelta(t, 101.8, e.Price, 1e-9)
}

func TestFindEntryCutoff(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		candle(3, 100.4, 100.9, 100.2, 100.6), // inside range
		candle(4, 100.9, 103.2, 100.7, 103.0), // breaks out, but after cutoff
	)
	r, _ := CalcRange(candles, 3)

	cutoff := candles[3].Time
	_, ok := FindEntry(candles, r, Params{Basis: BasisClose, Cutoff: cutoff})
	assert.False(t, ok)

	// Cutoff exactly at the breakout candle keeps it.
	e, ok := FindEntry(candles, r, Params{Basis: BasisClose, Cutoff: candles[4].Time})
	assert.True(t, ok)
	assert.True(t, e.Time.Equal(candles[4].Time))
}

func TestFindEntryFirstQualifyingCandleOnly(t *testing.T) {
	t.Parallel()

	candles := append(anchorCandles(),
		candle(3, 100.9, 103.2, 100.7, 103.0),
		candle(4, 103.0, 104.0, 102.5, 103.8),
	)
	r, _ := CalcRange(candles, 3)

	e, ok := FindEntry(candles, r, Params{Basis: BasisClose})
	assert.True(t, ok)
	assert.True(t, e.Time.Equal(candles[3].Time))
}
