package market

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// LoadStats counts what the loader kept and what it skipped. Per-row
// problems never abort a load; they are tallied and the row is dropped.
type LoadStats struct {
	Rows       int // bars kept
	BadRows    int // unparseable rows
	Duplicates int // same-timestamp rows beyond the first
}

// LoadCSV reads 1-minute bars from a CSV file with header
// timestamp,open,high,low,close,volume. Timestamps are RFC3339 and are
// normalized to UTC. Files ending in .gz or .xz are decompressed
// transparently. The result is sorted ascending with duplicate timestamps
// dropped keep-first.
func LoadCSV(path string) (Series, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	var rd io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		rd = gz
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("xz reader: %w", err)
		}
		rd = xzr
	}

	return ReadCSV(rd)
}

// ReadCSV parses bar rows from r. See LoadCSV for the format.
func ReadCSV(r io.Reader) (Series, LoadStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		bars  Series
		stats LoadStats
		first = true
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read bars csv: %w", err)
		}

		// Header row is optional.
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
				continue
			}
		}

		b, ok := parseBarRow(row)
		if !ok {
			stats.BadRows++
			continue
		}
		bars = append(bars, b)
	}

	bars.Sort()
	bars, stats.Duplicates = dedupe(bars)
	stats.Rows = len(bars)
	return bars, stats, nil
}

func parseBarRow(row []string) (Bar, bool) {
	if len(row) < 6 {
		return Bar{}, false
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Bar{}, false
		}
	}

	vals := make([]float64, 5)
	for i := 1; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Bar{}, false
		}
		vals[i-1] = v
	}

	return Bar{
		Time:   t.UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}

// dedupe drops repeated timestamps keep-first from a sorted series.
func dedupe(bars Series) (Series, int) {
	if len(bars) < 2 {
		return bars, 0
	}
	out := bars[:1]
	dropped := 0
	for _, b := range bars[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			dropped++
			continue
		}
		out = append(out, b)
	}
	return out, dropped
}
