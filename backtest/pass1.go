package backtest

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"orbtest/market"
	"orbtest/orb"
)

// Strategy identifiers the pipeline recognizes. Only the opening-range
// breakout generates entries today; the EMA and RSI slots are reserved and
// produce empty ledgers.
const (
	StrategyORB = "orb_v1"
	StrategyEMA = "ema_v1"
	StrategyRSI = "rsi_v1"
)

// Day-skip reasons recorded in pass 1 run metadata.
const (
	SkipMissingBars         = "missing_bars"
	SkipEmptySession        = "empty_session"
	SkipInsufficientCandles = "insufficient_candles"
)

// Pass1Config drives signal generation.
type Pass1Config struct {
	Strategy  string
	StartDate string // inclusive, 2006-01-02
	EndDate   string // inclusive

	OrbCandles        int
	CandleInterval    time.Duration
	Basis             orb.Basis
	ConfirmFullCandle bool

	// MaxTradesPerDay caps entries per session; the breakout detector emits
	// at most one, so values above 1 change nothing today.
	MaxTradesPerDay int

	// NoEntriesAfter excludes candles after this wall-clock time; nil means
	// no cutoff.
	NoEntriesAfter *market.TimeOfDay
}

func (c Pass1Config) validate() error {
	switch c.Strategy {
	case StrategyORB, StrategyEMA, StrategyRSI:
	default:
		return fmt.Errorf("unsupported strategy %q", c.Strategy)
	}
	if c.OrbCandles <= 0 {
		return fmt.Errorf("orb candle count must be positive")
	}
	if c.CandleInterval <= 0 {
		return fmt.Errorf("candle interval must be positive")
	}
	if _, err := time.Parse(market.DateLayout, c.StartDate); err != nil {
		return fmt.Errorf("bad start date %q: %w", c.StartDate, err)
	}
	if _, err := time.Parse(market.DateLayout, c.EndDate); err != nil {
		return fmt.Errorf("bad end date %q: %w", c.EndDate, err)
	}
	return nil
}

// Pass1Result is the signal-generation output: the entries ledger plus the
// per-day bookkeeping that goes into run metadata.
type Pass1Result struct {
	Entries []orb.Entry

	// CountsPerDay has one key per processed trade date, including days
	// that produced zero entries.
	CountsPerDay      map[string]int
	DaysWithNoEntries []string
	SkippedDays       map[string]string // date -> reason
}

// RunPass1 walks every calendar day in the configured range, detects at most
// one breakout entry per session, and returns the ledger sorted by
// (entry time, strategy). An unknown strategy fails before any day is
// touched.
func RunPass1(bars market.Series, sess *market.Session, cfg Pass1Config, log *zap.Logger) (Pass1Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		return Pass1Result{}, err
	}

	start, _ := time.Parse(market.DateLayout, cfg.StartDate)
	end, _ := time.Parse(market.DateLayout, cfg.EndDate)
	if end.Before(start) {
		return Pass1Result{}, fmt.Errorf("end date %s before start date %s", cfg.EndDate, cfg.StartDate)
	}

	res := Pass1Result{
		CountsPerDay: map[string]int{},
		SkippedDays:  map[string]string{},
	}

	for _, date := range market.DateRange(start, end) {
		dayBars, err := sess.Day(bars, date)
		if err != nil {
			return Pass1Result{}, err
		}
		if len(dayBars) == 0 {
			res.SkippedDays[date] = SkipMissingBars
			continue
		}

		sessionBars, err := sess.Regular(dayBars, date)
		if err != nil {
			return Pass1Result{}, err
		}
		if len(sessionBars) == 0 {
			res.SkippedDays[date] = SkipEmptySession
			log.Debug("no bars in session window", zap.String("date", date))
			continue
		}

		entry, found, err := detectDay(sessionBars, sess, date, cfg)
		if err != nil {
			if err == errTooFewCandles {
				res.SkippedDays[date] = SkipInsufficientCandles
				continue
			}
			return Pass1Result{}, err
		}

		if !found {
			res.CountsPerDay[date] = 0
			res.DaysWithNoEntries = append(res.DaysWithNoEntries, date)
			continue
		}

		res.Entries = append(res.Entries, entry)
		res.CountsPerDay[date] = 1
		log.Debug("entry detected",
			zap.String("date", date),
			zap.String("direction", string(entry.Direction)),
			zap.Float64("price", entry.Price),
		)
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		if !res.Entries[i].Time.Equal(res.Entries[j].Time) {
			return res.Entries[i].Time.Before(res.Entries[j].Time)
		}
		return res.Entries[i].Strategy < res.Entries[j].Strategy
	})

	log.Info("pass 1 complete",
		zap.Int("entries", len(res.Entries)),
		zap.Int("days_processed", len(res.CountsPerDay)),
		zap.Int("days_skipped", len(res.SkippedDays)),
	)
	return res, nil
}

var errTooFewCandles = fmt.Errorf("too few candles for opening range")

// detectDay runs the configured strategy on one session's bars. The reserved
// non-ORB strategies never signal.
func detectDay(sessionBars market.Series, sess *market.Session, date string, cfg Pass1Config) (orb.Entry, bool, error) {
	if cfg.Strategy != StrategyORB {
		return orb.Entry{}, false, nil
	}
	if cfg.MaxTradesPerDay == 0 {
		return orb.Entry{}, false, nil
	}

	open, err := sess.OpenTime(date)
	if err != nil {
		return orb.Entry{}, false, err
	}
	candles := market.Resample(sessionBars, open, cfg.CandleInterval)

	rng, ok := orb.CalcRange(candles, cfg.OrbCandles)
	if !ok {
		return orb.Entry{}, false, errTooFewCandles
	}

	params := orb.Params{
		Basis:             cfg.Basis,
		ConfirmFullCandle: cfg.ConfirmFullCandle,
	}
	if cfg.NoEntriesAfter != nil {
		cutoff, err := sess.At(date, *cfg.NoEntriesAfter)
		if err != nil {
			return orb.Entry{}, false, err
		}
		params.Cutoff = cutoff
	}

	entry, found := orb.FindEntry(candles, rng, params)
	if !found {
		return orb.Entry{}, false, nil
	}

	entry.TradeDate = date
	entry.Strategy = cfg.Strategy
	return entry, true, nil
}
