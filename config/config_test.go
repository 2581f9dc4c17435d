package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.OrbCandles())
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "experiment.yaml")
	raw := `
test_name: jan-orb
strategy: orb_v1
start_date: "2025-01-02"
end_date: "2025-01-31"
orb:
  orb_minutes: 15
  candle_interval_minutes: 5
  breakout_basis: wick
  max_trades_per_day: 1
  no_entries_after: "15:30"
exit:
  stop_loss_pct: 0.2
  take_profit_mode: percent
  take_profit_pct: 0.3
  both_hit_same_second: tp_first
account:
  starting_cash: 10000
  allocation_pct_per_trade: 0.45
  max_daily_loss_pct: 0.02
data:
  bars_path: ./bars.csv.xz
journal:
  type: sqlite
  db_path: ./runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "jan-orb", cfg.TestName)
	assert.Equal(t, "wick", cfg.Orb.BreakoutBasis)
	assert.Equal(t, 3, cfg.OrbCandles())
	assert.Equal(t, "tp_first", cfg.Exit.BothHitSameSecond)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	cutoff := cfg.Cutoff()
	require.NotNil(t, cutoff)
	assert.Equal(t, 15, cutoff.Hour)
	assert.Equal(t, 30, cutoff.Minute)
}

func TestLoadFromFileJSONFallback(t *testing.T) {
	t.Parallel()

	cfg := Default()
	path := filepath.Join(t.TempDir(), "experiment.json")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Strategy, loaded.Strategy)
	assert.InDelta(t, cfg.Exit.StopLossPct, loaded.Exit.StopLossPct, 1e-12)
}

func TestSaveRoundTripYAML(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Orb.NoEntriesAfter = "14:00"
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Orb.NoEntriesAfter, loaded.Orb.NoEntriesAfter)
	assert.Equal(t, cfg.Account.StartingCash, loaded.Account.StartingCash)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing strategy", func(c *Config) { c.Strategy = "" }},
		{"bad start date", func(c *Config) { c.StartDate = "01/02/2025" }},
		{"end before start", func(c *Config) { c.EndDate = "2024-12-31" }},
		{"orb not divisible", func(c *Config) { c.Orb.OrbMinutes = 14 }},
		{"unknown basis", func(c *Config) { c.Orb.BreakoutBasis = "hlc3" }},
		{"bad cutoff", func(c *Config) { c.Orb.NoEntriesAfter = "25:99" }},
		{"zero stop", func(c *Config) { c.Exit.StopLossPct = 0 }},
		{"bad tie rule", func(c *Config) { c.Exit.BothHitSameSecond = "coin_flip" }},
		{"zero cash", func(c *Config) { c.Account.StartingCash = 0 }},
		{"allocation above one", func(c *Config) { c.Account.AllocationPctPerTrade = 1.5 }},
		{"negative loss limit", func(c *Config) { c.Account.MaxDailyLossPct = -0.01 }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite"; c.Journal.DBPath = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
