package market

import "time"

// Resample aggregates bars into fixed-width buckets of the given interval,
// anchored at anchor (typically the session open). Buckets are left-closed
// and right-labeled: a bar at time t lands in bucket k = (t-anchor)/interval
// and the resulting candle carries the timestamp anchor+(k+1)*interval, the
// close time of the bucket. Empty buckets are omitted. Bars before anchor
// are ignored.
//
// Aggregation: open = first, high = max, low = min, close = last,
// volume = sum. Input must be sorted ascending.
func Resample(bars Series, anchor time.Time, interval time.Duration) Series {
	if interval <= 0 || len(bars) == 0 {
		return nil
	}

	var out Series
	cur := -1
	for _, b := range bars {
		if b.Time.Before(anchor) {
			continue
		}
		k := int(b.Time.Sub(anchor) / interval)
		if k != cur {
			out = append(out, Bar{
				Time:   anchor.Add(time.Duration(k+1) * interval),
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
			cur = k
			continue
		}
		c := &out[len(out)-1]
		if b.High > c.High {
			c.High = b.High
		}
		if b.Low < c.Low {
			c.Low = b.Low
		}
		c.Close = b.Close
		c.Volume += b.Volume
	}
	return out
}
