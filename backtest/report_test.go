package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportWriteOrg(t *testing.T) {
	t.Parallel()

	r := RunReport{
		RunID:        "jan-orb-01ABC",
		Created:      time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		Strategy:     "orb_v1",
		Start:        "2025-01-02",
		End:          "2025-01-31",
		Basis:        "close",
		Dataset:      "./bars.csv",
		StartingCash: 10000,
		Metrics: Metrics{
			TotalTrades:    10,
			Wins:           6,
			Losses:         4,
			WinRate:        0.6,
			TotalPnL:       420.5,
			TotalReturnPct: 0.04205,
			MaxDrawdownPct: -0.031,
			EndingEquity:   10420.5,
		},
		EntriesFound: 12,
		DaysSkipped:  3,
		Skipped:      map[string]int{SkipNoForwardBars: 2},
		Config:       []byte("strategy: orb_v1\n"),
		Notes:        []string{"wick basis untested this range"},
	}

	path := filepath.Join(t.TempDir(), "report.org")
	require.NoError(t, r.WriteOrg(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, ":RUN_ID:      jan-orb-01ABC")
	assert.Contains(t, out, ":WIN_RATE:    60.00")
	assert.Contains(t, out, ":RETURN_PCT:  4.21")
	assert.Contains(t, out, "| Wins    | 6 |")
	assert.Contains(t, out, "Skipped (no_forward_bars): 2")
	assert.Contains(t, out, "strategy: orb_v1")
	assert.Contains(t, out, "wick basis untested this range")
}

func TestRunReportZeroTimeGetsCreated(t *testing.T) {
	t.Parallel()

	r := RunReport{RunID: "x", Strategy: "orb_v1"}
	path := filepath.Join(t.TempDir(), "report.org")
	require.NoError(t, r.WriteOrg(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":CREATED:     [")
}
