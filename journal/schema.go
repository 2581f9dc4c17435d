// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	total_trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	total_pnl REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	max_drawdown_pct REAL NOT NULL,
	ending_equity REAL NOT NULL,
	config BLOB
);

CREATE TABLE IF NOT EXISTS entries (
	trade_date TEXT NOT NULL,
	entry_ts DATETIME NOT NULL,
	direction TEXT NOT NULL,
	reference_price REAL NOT NULL,
	strategy_name TEXT NOT NULL,
	context TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	trade_date TEXT NOT NULL,
	entry_ts DATETIME NOT NULL,
	exit_ts DATETIME NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	exit_reason TEXT NOT NULL,
	allocation REAL NOT NULL,
	pnl REAL NOT NULL,
	return_pct REAL NOT NULL,
	partial_exit_ts DATETIME,
	partial_exit_price REAL,
	partial_pnl REAL,
	runner_pnl REAL
);

CREATE TABLE IF NOT EXISTS equity (
	ts DATETIME NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_ts ON entries(entry_ts);
CREATE INDEX IF NOT EXISTS idx_trades_exit_ts ON trades(exit_ts);
CREATE INDEX IF NOT EXISTS idx_equity_ts ON equity(ts);
`
