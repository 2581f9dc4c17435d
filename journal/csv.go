package journal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var entriesHeader = []string{"trade_date", "entry_ts", "direction", "reference_price", "strategy_name", "context"}

var tradesHeader = []string{
	"trade_id", "trade_date", "entry_ts", "exit_ts", "direction",
	"entry_price", "exit_price", "exit_reason", "allocation", "pnl", "return_pct",
	"partial_exit_ts", "partial_exit_price", "partial_pnl", "runner_pnl",
}

var equityHeader = []string{"timestamp", "equity"}

// CSVJournal writes entries/trades/equity rows into three CSV files,
// flushing after every record so partial runs remain inspectable.
type CSVJournal struct {
	entries, trades, equity *csv.Writer
	files                   []*os.File
}

// NewCSV creates entries.csv, trades.csv and equity.csv under dir and
// writes their headers.
func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	j := &CSVJournal{}
	for _, out := range []struct {
		name   string
		header []string
		dst    **csv.Writer
	}{
		{"entries.csv", entriesHeader, &j.entries},
		{"trades.csv", tradesHeader, &j.trades},
		{"equity.csv", equityHeader, &j.equity},
	} {
		file, err := os.Create(filepath.Join(dir, out.name))
		if err != nil {
			j.Close()
			return nil, err
		}
		j.files = append(j.files, file)
		w := csv.NewWriter(file)
		if err := w.Write(out.header); err != nil {
			j.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			j.Close()
			return nil, err
		}
		*out.dst = w
	}
	return j, nil
}

func (j *CSVJournal) RecordEntry(e EntryRecord) error {
	err := j.entries.Write([]string{
		e.TradeDate,
		e.EntryTS.Format(time.RFC3339),
		e.Direction,
		f(e.RefPrice),
		e.Strategy,
		e.Context,
	})
	if err != nil {
		return err
	}
	j.entries.Flush()
	return j.entries.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.TradeDate,
		t.EntryTS.Format(time.RFC3339),
		t.ExitTS.Format(time.RFC3339),
		t.Direction,
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.ExitReason,
		f(t.Allocation),
		f(t.PnL),
		f(t.ReturnPct),
		optTime(t.PartialExitTS),
		optF(t.PartialExitPrice),
		optF(t.PartialPnL),
		optF(t.RunnerPnL),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.TS.Format(time.RFC3339),
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{j.entries, j.trades, j.equity} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteEntriesCSV writes a standalone entries ledger, the pass 1 artifact
// consumed later by pass 2.
func WriteEntriesCSV(path string, recs []EntryRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create entries ledger: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(entriesHeader); err != nil {
		return err
	}
	for _, e := range recs {
		err := w.Write([]string{
			e.TradeDate,
			e.EntryTS.Format(time.RFC3339),
			e.Direction,
			f(e.RefPrice),
			e.Strategy,
			e.Context,
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadEntriesCSV loads an entries ledger written by RecordEntry. It is the
// bridge between pass 1 output and pass 2 input.
func ReadEntriesCSV(path string) ([]EntryRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entries ledger: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(entriesHeader)

	var out []EntryRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read entries ledger: %w", err)
		}
		if first {
			first = false
			if strings.EqualFold(row[0], entriesHeader[0]) {
				continue
			}
		}

		ts, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("bad entry_ts %q: %w", row[1], err)
		}
		price, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("bad reference_price %q: %w", row[3], err)
		}

		out = append(out, EntryRecord{
			TradeDate: row[0],
			EntryTS:   ts.UTC(),
			Direction: row[2],
			RefPrice:  price,
			Strategy:  row[4],
			Context:   row[5],
		})
	}
	return out, nil
}

// WriteJSON marshals v with indentation into path, creating parent
// directories as needed. Used for metrics and run metadata artifacts.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func optF(x *float64) string {
	if x == nil {
		return ""
	}
	return f(*x)
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
