package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbtest/market"
	"orbtest/orb"
)

func testSession(t *testing.T) *market.Session {
	t.Helper()
	sess, err := market.NewSession()
	require.NoError(t, err)
	return sess
}

// breakoutDay builds one session of minute bars: the first 15 minutes stay
// inside [100, 101], minutes 15-19 rally so the fourth 5-minute candle
// closes at 103, then the price holds.
func breakoutDay(t *testing.T, sess *market.Session, date string) market.Series {
	t.Helper()
	open, err := sess.OpenTime(date)
	require.NoError(t, err)

	var bars market.Series
	for i := 0; i < 60; i++ {
		var o, h, l, c float64
		switch {
		case i < 15:
			o, h, l, c = 100.3, 101, 100, 100.7
		case i < 20:
			o, h, l, c = 101, 103.2, 100.9, 103
		default:
			o, h, l, c = 103, 103.5, 102.5, 103.1
		}
		bars = append(bars, market.Bar{
			Time: open.Add(time.Duration(i) * time.Minute),
			Open: o, High: h, Low: l, Close: c, Volume: 100,
		})
	}
	return bars
}

// flatDay never leaves the opening range.
func flatDay(t *testing.T, sess *market.Session, date string) market.Series {
	t.Helper()
	open, err := sess.OpenTime(date)
	require.NoError(t, err)

	var bars market.Series
	for i := 0; i < 60; i++ {
		bars = append(bars, market.Bar{
			Time: open.Add(time.Duration(i) * time.Minute),
			Open: 100.5, High: 100.6, Low: 100.4, Close: 100.5, Volume: 100,
		})
	}
	return bars
}

func pass1Config(start, end string) Pass1Config {
	return Pass1Config{
		Strategy:        StrategyORB,
		StartDate:       start,
		EndDate:         end,
		OrbCandles:      3,
		CandleInterval:  5 * time.Minute,
		Basis:           orb.BasisClose,
		MaxTradesPerDay: 1,
	}
}

func TestRunPass1BreakoutDay(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	bars := breakoutDay(t, sess, "2025-01-02")

	res, err := RunPass1(bars, sess, pass1Config("2025-01-02", "2025-01-02"), nil)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "2025-01-02", e.TradeDate)
	assert.Equal(t, orb.Call, e.Direction)
	assert.InDelta(t, 103.0, e.Price, 1e-9)
	assert.Equal(t, StrategyORB, e.Strategy)

	// Entry candle is the fourth bucket, labeled 09:50.
	want, err := sess.At("2025-01-02", market.TimeOfDay{Hour: 9, Minute: 50})
	require.NoError(t, err)
	assert.True(t, e.Time.Equal(want))

	assert.Equal(t, 1, res.CountsPerDay["2025-01-02"])
	assert.Empty(t, res.SkippedDays)
}

func TestRunPass1ZeroSignalDayRecorded(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	bars := append(breakoutDay(t, sess, "2025-01-02"), flatDay(t, sess, "2025-01-03")...)

	// The range includes a weekend; those days have no bars at all.
	res, err := RunPass1(bars, sess, pass1Config("2025-01-02", "2025-01-05"), nil)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, 1, res.CountsPerDay["2025-01-02"])
	assert.Equal(t, 0, res.CountsPerDay["2025-01-03"])
	assert.Equal(t, []string{"2025-01-03"}, res.DaysWithNoEntries)
	assert.Equal(t, SkipMissingBars, res.SkippedDays["2025-01-04"])
	assert.Equal(t, SkipMissingBars, res.SkippedDays["2025-01-05"])
}

func TestRunPass1InsufficientCandles(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	open, err := sess.OpenTime("2025-01-02")
	require.NoError(t, err)

	// Only 7 minutes of data: one full candle plus a partial second.
	var bars market.Series
	for i := 0; i < 7; i++ {
		bars = append(bars, market.Bar{
			Time: open.Add(time.Duration(i) * time.Minute),
			Open: 100, High: 101, Low: 99, Close: 100, Volume: 10,
		})
	}

	res, err := RunPass1(bars, sess, pass1Config("2025-01-02", "2025-01-02"), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, SkipInsufficientCandles, res.SkippedDays["2025-01-02"])
}

func TestRunPass1CutoffSuppressesLateEntry(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	bars := breakoutDay(t, sess, "2025-01-02")

	cfg := pass1Config("2025-01-02", "2025-01-02")
	cutoff := market.TimeOfDay{Hour: 9, Minute: 45}
	cfg.NoEntriesAfter = &cutoff

	res, err := RunPass1(bars, sess, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, []string{"2025-01-02"}, res.DaysWithNoEntries)
}

func TestRunPass1ReservedStrategiesEmitNothing(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	bars := breakoutDay(t, sess, "2025-01-02")

	for _, strat := range []string{StrategyEMA, StrategyRSI} {
		cfg := pass1Config("2025-01-02", "2025-01-02")
		cfg.Strategy = strat

		res, err := RunPass1(bars, sess, cfg, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Entries, strat)
		assert.Equal(t, 0, res.CountsPerDay["2025-01-02"], strat)
	}
}

func TestRunPass1UnknownStrategyFailsFast(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	cfg := pass1Config("2025-01-02", "2025-01-02")
	cfg.Strategy = "momo_v9"

	_, err := RunPass1(nil, sess, cfg, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported strategy")
}

func TestRunPass1BadDateRange(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	cfg := pass1Config("2025-01-10", "2025-01-02")

	_, err := RunPass1(nil, sess, cfg, nil)
	assert.Error(t, err)
}
