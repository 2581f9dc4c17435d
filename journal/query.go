package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, start_date, end_date,
		       total_trades, wins, losses, win_rate, total_pnl, total_return_pct,
		       max_drawdown_pct, ending_equity, config
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Strategy,
		&rec.Start,
		&rec.End,
		&rec.TotalTrades,
		&rec.Wins,
		&rec.Losses,
		&rec.WinRate,
		&rec.TotalPnL,
		&rec.TotalReturnPct,
		&rec.MaxDrawdownPct,
		&rec.EndingEquity,
		&rec.Config,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns all run summaries, most recent first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, start_date, end_date,
		       total_trades, wins, losses, win_rate, total_pnl, total_return_pct,
		       max_drawdown_pct, ending_equity, config
		FROM runs
		ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Created,
			&rec.Strategy,
			&rec.Start,
			&rec.End,
			&rec.TotalTrades,
			&rec.Wins,
			&rec.Losses,
			&rec.WinRate,
			&rec.TotalPnL,
			&rec.TotalReturnPct,
			&rec.MaxDrawdownPct,
			&rec.EndingEquity,
			&rec.Config,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns all trades ordered by exit time ascending.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, trade_date, entry_ts, exit_ts, direction,
		       entry_price, exit_price, exit_reason, allocation, pnl, return_pct,
		       partial_exit_ts, partial_exit_price, partial_pnl, runner_pnl
		FROM trades
		ORDER BY exit_ts ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.TradeDate,
			&rec.EntryTS,
			&rec.ExitTS,
			&rec.Direction,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.ExitReason,
			&rec.Allocation,
			&rec.PnL,
			&rec.ReturnPct,
			&rec.PartialExitTS,
			&rec.PartialExitPrice,
			&rec.PartialPnL,
			&rec.RunnerPnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEntries returns the entries ledger ordered by timestamp.
func (j *SQLite) ListEntries() ([]EntryRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_date, entry_ts, direction, reference_price, strategy_name, context
		FROM entries
		ORDER BY entry_ts ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntryRecord
	for rows.Next() {
		var rec EntryRecord
		if err := rows.Scan(
			&rec.TradeDate,
			&rec.EntryTS,
			&rec.Direction,
			&rec.RefPrice,
			&rec.Strategy,
			&rec.Context,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the equity curve ordered by timestamp.
func (j *SQLite) ListEquity() ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT ts, equity FROM equity ORDER BY ts ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(&rec.TS, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
