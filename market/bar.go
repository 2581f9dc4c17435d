package market

import (
	"sort"
	"time"
)

// Bar is one OHLCV bar. Timestamps are normalized to UTC on load; bars are
// immutable once a Series is built.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a time-ascending sequence of bars. Slicing helpers return
// sub-slices of the backing array; callers must not mutate them.
type Series []Bar

func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// From returns the bars at or after ts.
func (s Series) From(ts time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(ts) })
	return s[i:]
}

// After returns the bars strictly after ts.
func (s Series) After(ts time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return s[i].Time.After(ts) })
	return s[i:]
}

// Until returns the bars at or before ts.
func (s Series) Until(ts time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return s[i].Time.After(ts) })
	return s[:i]
}

// Between returns the bars in [from, to], inclusive on both ends.
func (s Series) Between(from, to time.Time) Series {
	return s.From(from).Until(to)
}

func (s Series) First() Bar { return s[0] }
func (s Series) Last() Bar  { return s[len(s)-1] }
