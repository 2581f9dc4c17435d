// Package journal persists backtest artifacts: the entries ledger produced
// by signal generation, the trades ledger, equity curve and metrics produced
// by simulation, and per-run summary records. Two implementations exist,
// CSV files and SQLite; both carry the same flat records.
package journal

import "time"

// EntryRecord is one row of the entries ledger.
type EntryRecord struct {
	TradeDate string
	EntryTS   time.Time
	Direction string
	RefPrice  float64
	Strategy  string
	Context   string // JSON decision trace
}

// TradeRecord is one row of the trades ledger. Partial fields are nil when
// the trade had no partial leg.
type TradeRecord struct {
	TradeID    string
	TradeDate  string
	EntryTS    time.Time
	ExitTS     time.Time
	Direction  string
	EntryPrice float64
	ExitPrice  float64
	ExitReason string
	Allocation float64
	PnL        float64
	ReturnPct  float64

	PartialExitTS    *time.Time
	PartialExitPrice *float64
	PartialPnL       *float64
	RunnerPnL        *float64
}

// EquityRecord is one point of the running-equity series.
type EquityRecord struct {
	TS     time.Time
	Equity float64
}

// RunRecord summarizes one completed backtest run for the runs table.
type RunRecord struct {
	RunID    string
	Created  time.Time
	Strategy string
	Start    string
	End      string

	TotalTrades    int
	Wins           int
	Losses         int
	WinRate        float64
	TotalPnL       float64
	TotalReturnPct float64
	MaxDrawdownPct float64
	EndingEquity   float64

	Config []byte // config snapshot as written alongside the run
}

// Journal records backtest output rows. Implementations must be safe for
// sequential use from the pipeline; none of them needs to be concurrent.
type Journal interface {
	RecordEntry(EntryRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}
