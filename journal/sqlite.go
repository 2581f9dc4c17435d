package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordEntry(e EntryRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO entries
		(trade_date, entry_ts, direction, reference_price, strategy_name, context)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.TradeDate, e.EntryTS, e.Direction, e.RefPrice, e.Strategy, e.Context,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, trade_date, entry_ts, exit_ts, direction, entry_price, exit_price,
		 exit_reason, allocation, pnl, return_pct,
		 partial_exit_ts, partial_exit_price, partial_pnl, runner_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.TradeDate, t.EntryTS, t.ExitTS, t.Direction,
		t.EntryPrice, t.ExitPrice, t.ExitReason, t.Allocation, t.PnL, t.ReturnPct,
		t.PartialExitTS, t.PartialExitPrice, t.PartialPnL, t.RunnerPnL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (ts, equity) VALUES (?, ?)`,
		e.TS, e.Equity,
	)
	return err
}

// RecordRun stores the per-run summary row after a backtest completes.
func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, start_date, end_date,
		 total_trades, wins, losses, win_rate, total_pnl, total_return_pct,
		 max_drawdown_pct, ending_equity, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Start, r.End,
		r.TotalTrades, r.Wins, r.Losses, r.WinRate, r.TotalPnL, r.TotalReturnPct,
		r.MaxDrawdownPct, r.EndingEquity, r.Config,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
