package orb

import (
	"time"

	"orbtest/market"
)

// Direction of an entry signal: CALL rides an upside breakout, PUT a
// downside one.
type Direction string

const (
	Call Direction = "CALL"
	Put  Direction = "PUT"
)

// Basis selects which candle price must breach the range.
type Basis string

const (
	// BasisClose triggers on a close strictly beyond the range.
	BasisClose Basis = "close"
	// BasisWick triggers on the candle's high/low extreme.
	BasisWick Basis = "wick"
)

// Entry is one breakout entry signal. Context is a free-form trace of the
// inputs behind the decision, serialized into the entries ledger for replay;
// nothing downstream consumes it.
type Entry struct {
	TradeDate string
	Time      time.Time
	Direction Direction
	Price     float64
	Strategy  string
	Context   map[string]any
}

// Params configures the breakout scan.
type Params struct {
	Basis             Basis
	ConfirmFullCandle bool      // close basis only: open must sit on the far side of the level
	Cutoff            time.Time // zero means no cutoff; candles after it are excluded
}

// FindEntry scans candles in time order and returns the first one breaching
// the range, or false when none qualifies. Only candles strictly after
// r.End participate. At most one entry per session is produced.
//
// On the wick basis a candle can in principle breach both edges; CALL is
// checked first and wins.
func FindEntry(candles market.Series, r Range, p Params) (Entry, bool) {
	for _, c := range candles.After(r.End) {
		if !p.Cutoff.IsZero() && c.Time.After(p.Cutoff) {
			break
		}

		if p.Basis == BasisWick {
			if c.High > r.High {
				return wickEntry(c, r, Call, c.High), true
			}
			if c.Low < r.Low {
				return wickEntry(c, r, Put, c.Low), true
			}
			continue
		}

		if c.Close > r.High {
			if p.ConfirmFullCandle && c.Open <= r.High {
				continue // gapped through the level; not a confirmed breakout
			}
			return closeEntry(c, r, Call), true
		}
		if c.Close < r.Low {
			if p.ConfirmFullCandle && c.Open >= r.Low {
				continue
			}
			return closeEntry(c, r, Put), true
		}
	}
	return Entry{}, false
}

func closeEntry(c market.Bar, r Range, dir Direction) Entry {
	return Entry{
		Time:      c.Time,
		Direction: dir,
		Price:     c.Close,
		Context: map[string]any{
			"orb_high":       r.High,
			"orb_low":        r.Low,
			"orb_end_ts":     r.End.Format(time.RFC3339),
			"candle_open":    c.Open,
			"candle_close":   c.Close,
			"breakout_basis": string(BasisClose),
		},
	}
}

func wickEntry(c market.Bar, r Range, dir Direction, price float64) Entry {
	return Entry{
		Time:      c.Time,
		Direction: dir,
		Price:     price,
		Context: map[string]any{
			"orb_high":       r.High,
			"orb_low":        r.Low,
			"orb_end_ts":     r.End.Format(time.RFC3339),
			"candle_high":    c.High,
			"candle_low":     c.Low,
			"candle_close":   c.Close,
			"breakout_basis": string(BasisWick),
		},
	}
}
