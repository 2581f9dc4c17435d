// Package config defines the experiment configuration file: the date range,
// strategy selection, opening-range and exit parameters, account sizing and
// journal settings for one backtest run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"orbtest/market"
	"orbtest/orb"
	"orbtest/sim"
)

// Config represents one complete experiment configuration.
type Config struct {
	TestName  string `json:"test_name" yaml:"test_name"`
	Strategy  string `json:"strategy" yaml:"strategy"`
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`

	Orb     OrbConfig     `json:"orb" yaml:"orb"`
	Exit    ExitConfig    `json:"exit" yaml:"exit"`
	Account AccountConfig `json:"account" yaml:"account"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// OrbConfig contains opening-range and breakout-detection parameters.
type OrbConfig struct {
	OrbMinutes            int    `json:"orb_minutes" yaml:"orb_minutes"`
	CandleIntervalMinutes int    `json:"candle_interval_minutes" yaml:"candle_interval_minutes"`
	BreakoutBasis         string `json:"breakout_basis" yaml:"breakout_basis"`
	ConfirmFullCandle     bool   `json:"confirm_full_candle" yaml:"confirm_full_candle"`
	MaxTradesPerDay       int    `json:"max_trades_per_day" yaml:"max_trades_per_day"`
	NoEntriesAfter        string `json:"no_entries_after,omitempty" yaml:"no_entries_after,omitempty"` // "HH:MM", empty disables
}

// ExitConfig contains trade-exit parameters.
type ExitConfig struct {
	StopLossPct    float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitMode string  `json:"take_profit_mode" yaml:"take_profit_mode"`
	TakeProfitPct  float64 `json:"take_profit_pct" yaml:"take_profit_pct"`

	TrailingEnabled bool    `json:"trailing_stop_enabled" yaml:"trailing_stop_enabled"`
	TrailPct        float64 `json:"trail_pct,omitempty" yaml:"trail_pct,omitempty"`

	PartialTPEnabled bool    `json:"partial_tp_enabled" yaml:"partial_tp_enabled"`
	SplitPct         float64 `json:"split_pct,omitempty" yaml:"split_pct,omitempty"`
	FirstTPPct       float64 `json:"first_tp_pct,omitempty" yaml:"first_tp_pct,omitempty"`
	RunnerTrailPct   float64 `json:"runner_trail_pct,omitempty" yaml:"runner_trail_pct,omitempty"`

	BothHitSameSecond string `json:"both_hit_same_second" yaml:"both_hit_same_second"`
}

// AccountConfig contains account sizing parameters.
type AccountConfig struct {
	StartingCash          float64 `json:"starting_cash" yaml:"starting_cash"`
	AllocationPctPerTrade float64 `json:"allocation_pct_per_trade" yaml:"allocation_pct_per_trade"`

	// MaxDailyLossPct halts a day's remaining entries once losses reach
	// this fraction of starting cash. Zero disables the limit.
	MaxDailyLossPct float64 `json:"max_daily_loss_pct,omitempty" yaml:"max_daily_loss_pct,omitempty"`
}

// DataConfig locates the input bars.
type DataConfig struct {
	BarsPath string `json:"bars_path" yaml:"bars_path"` // CSV, optionally .gz or .xz
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file. YAML is tried first with a
// JSON fallback, so both formats work regardless of extension.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if _, err := time.Parse(market.DateLayout, c.StartDate); err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
	}
	end, err := time.Parse(market.DateLayout, c.EndDate)
	if err != nil {
		return fmt.Errorf("end_date must be YYYY-MM-DD: %w", err)
	}
	start, _ := time.Parse(market.DateLayout, c.StartDate)
	if end.Before(start) {
		return fmt.Errorf("end_date must not precede start_date")
	}

	if c.Orb.CandleIntervalMinutes <= 0 {
		return fmt.Errorf("orb.candle_interval_minutes must be positive")
	}
	if c.Orb.OrbMinutes <= 0 {
		return fmt.Errorf("orb.orb_minutes must be positive")
	}
	if c.Orb.OrbMinutes%c.Orb.CandleIntervalMinutes != 0 {
		return fmt.Errorf("orb.orb_minutes must be a multiple of candle_interval_minutes")
	}
	switch orb.Basis(c.Orb.BreakoutBasis) {
	case orb.BasisClose, orb.BasisWick:
	default:
		return fmt.Errorf("orb.breakout_basis must be %q or %q", orb.BasisClose, orb.BasisWick)
	}
	if c.Orb.MaxTradesPerDay < 0 {
		return fmt.Errorf("orb.max_trades_per_day must not be negative")
	}
	if c.Orb.NoEntriesAfter != "" {
		if _, err := market.ParseTimeOfDay(c.Orb.NoEntriesAfter); err != nil {
			return fmt.Errorf("orb.no_entries_after: %w", err)
		}
	}

	if err := c.ExitParams().Validate(); err != nil {
		return fmt.Errorf("exit: %w", err)
	}

	if c.Account.StartingCash <= 0 {
		return fmt.Errorf("account.starting_cash must be positive")
	}
	if c.Account.AllocationPctPerTrade <= 0 || c.Account.AllocationPctPerTrade > 1 {
		return fmt.Errorf("account.allocation_pct_per_trade must be between 0 and 1")
	}
	if c.Account.MaxDailyLossPct < 0 {
		return fmt.Errorf("account.max_daily_loss_pct must not be negative")
	}

	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// OrbCandles is the number of resampled candles forming the opening range.
func (c *Config) OrbCandles() int {
	return c.Orb.OrbMinutes / c.Orb.CandleIntervalMinutes
}

// CandleInterval is the resampling bucket width.
func (c *Config) CandleInterval() time.Duration {
	return time.Duration(c.Orb.CandleIntervalMinutes) * time.Minute
}

// Cutoff returns the entry cutoff time-of-day, or nil when none configured.
// Call Validate first; a malformed value yields nil here.
func (c *Config) Cutoff() *market.TimeOfDay {
	if c.Orb.NoEntriesAfter == "" {
		return nil
	}
	tod, err := market.ParseTimeOfDay(c.Orb.NoEntriesAfter)
	if err != nil {
		return nil
	}
	return &tod
}

// ExitParams maps the exit section onto simulator parameters.
func (c *Config) ExitParams() sim.ExitParams {
	return sim.ExitParams{
		StopLossPct:       c.Exit.StopLossPct,
		TakeProfitMode:    c.Exit.TakeProfitMode,
		TakeProfitPct:     c.Exit.TakeProfitPct,
		TrailingEnabled:   c.Exit.TrailingEnabled,
		TrailPct:          c.Exit.TrailPct,
		PartialTPEnabled:  c.Exit.PartialTPEnabled,
		SplitPct:          c.Exit.SplitPct,
		FirstTPPct:        c.Exit.FirstTPPct,
		RunnerTrailPct:    c.Exit.RunnerTrailPct,
		BothHitSameSecond: c.Exit.BothHitSameSecond,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		TestName:  "orb-baseline",
		Strategy:  "orb_v1",
		StartDate: "2025-01-02",
		EndDate:   "2025-01-31",
		Orb: OrbConfig{
			OrbMinutes:            15,
			CandleIntervalMinutes: 5,
			BreakoutBasis:         string(orb.BasisClose),
			ConfirmFullCandle:     false,
			MaxTradesPerDay:       1,
		},
		Exit: ExitConfig{
			StopLossPct:       0.20,
			TakeProfitMode:    sim.TakeProfitModePercent,
			TakeProfitPct:     0.30,
			BothHitSameSecond: sim.BothHitStopFirst,
		},
		Account: AccountConfig{
			StartingCash:          10000,
			AllocationPctPerTrade: 0.45,
		},
		Data: DataConfig{
			BarsPath: "./bars.csv",
		},
		Journal: JournalConfig{
			Type: "csv",
		},
	}
}
