package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults for US equity regular trading hours.
const (
	DefaultTimeZone = "America/New_York"
	DateLayout      = "2006-01-02"
)

// TimeOfDay is a wall-clock time in the market time zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("bad time of day %q (want HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("bad minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Session describes one market's regular trading window. It is passed
// explicitly into every component that needs calendar math; nothing reads
// session parameters from globals.
type Session struct {
	Loc   *time.Location
	Start TimeOfDay // session open, inclusive
	End   TimeOfDay // session close, inclusive
}

// NewSession returns the default 09:30-16:00 America/New_York session.
func NewSession() (*Session, error) {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}
	return &Session{
		Loc:   loc,
		Start: TimeOfDay{Hour: 9, Minute: 30},
		End:   TimeOfDay{Hour: 16},
	}, nil
}

// TradeDate returns the calendar date of t in the market time zone.
func (s *Session) TradeDate(t time.Time) string {
	return t.In(s.Loc).Format(DateLayout)
}

// At returns the instant of the given wall-clock time on the given trade date.
func (s *Session) At(date string, tod TimeOfDay) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, s.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad trade date %q: %w", date, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, 0, 0, s.Loc), nil
}

// OpenTime returns the session open instant for date.
func (s *Session) OpenTime(date string) (time.Time, error) {
	return s.At(date, s.Start)
}

// CloseTime returns the session close instant for date.
func (s *Session) CloseTime(date string) (time.Time, error) {
	return s.At(date, s.End)
}

// Day returns all bars whose market-local calendar date equals date,
// regardless of session hours (pre/post market included).
func (s *Session) Day(bars Series, date string) (Series, error) {
	midnight, err := s.At(date, TimeOfDay{})
	if err != nil {
		return nil, err
	}
	next := midnight.AddDate(0, 0, 1)
	return bars.From(midnight).Until(next.Add(-time.Nanosecond)), nil
}

// Regular returns the bars of date inside the regular session window,
// inclusive on both ends.
func (s *Session) Regular(bars Series, date string) (Series, error) {
	open, err := s.OpenTime(date)
	if err != nil {
		return nil, err
	}
	close, err := s.CloseTime(date)
	if err != nil {
		return nil, err
	}
	return bars.Between(open, close), nil
}

// TradeDates returns the distinct market-local calendar dates present in
// bars, in chronological order.
func (s *Session) TradeDates(bars Series) []string {
	var dates []string
	last := ""
	for _, b := range bars {
		d := s.TradeDate(b.Time)
		if d != last {
			dates = append(dates, d)
			last = d
		}
	}
	return dates
}

// DateRange enumerates every calendar day from start to end inclusive,
// formatted as trade dates. Weekends and holidays are included; days with
// no bars are skipped (and counted) downstream.
func DateRange(start, end time.Time) []string {
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}
