// Package orb implements opening-range-breakout signal generation: the
// opening range anchor computed from the first resampled candles of a
// session, and the breakout scan that turns a range breach into an entry
// signal.
package orb

import (
	"time"

	"orbtest/market"
)

// Range is the opening-range anchor for one session. End is the close time
// (right label) of the last anchor candle; candles at or before End never
// produce entries.
type Range struct {
	High float64
	Low  float64
	End  time.Time
}

// CalcRange computes the opening range from the first orbCandles resampled
// candles. It reports false when the session has too few candles; the day
// then contributes no signal.
func CalcRange(candles market.Series, orbCandles int) (Range, bool) {
	if orbCandles <= 0 || len(candles) < orbCandles {
		return Range{}, false
	}

	window := candles[:orbCandles]
	r := Range{
		High: window[0].High,
		Low:  window[0].Low,
		End:  window[orbCandles-1].Time,
	}
	for _, c := range window[1:] {
		if c.High > r.High {
			r.High = c.High
		}
		if c.Low < r.Low {
			r.Low = c.Low
		}
	}
	return r, true
}
