package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.ChartsDir = filepath.Join(base, "elsewhere", "charts")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join(base, "data", "processed"), paths.ProcessedDir)
	assert.Equal(t, filepath.Join(base, "outputs", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "elsewhere", "charts"), paths.ChartsDir)

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.RawDir, paths.ProcessedDir, paths.ReportsDir, paths.ChartsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPathNames(t *testing.T) {
	paths := &Paths{RawDir: "raw", ProcessedDir: "processed", ReportsDir: "reports"}
	day := time.Date(2024, 7, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		got  string
		want string
	}{
		{paths.RawEventsCSV(), filepath.Join("raw", "infection_events_raw.csv")},
		{paths.ProcessedEventsCSV(), filepath.Join("processed", "infection_events_processed.csv")},
		{paths.FlaggedCSV(2025), filepath.Join("processed", "daily_spc_flagged_FY2025.csv")},
		{paths.SummaryCSV(), filepath.Join("reports", "spc_breach_summary.csv")},
		{paths.WorkbookPath(2025), filepath.Join("reports", "spc_report_FY2025.xlsx")},
		{paths.RunReportPath(2025), filepath.Join("reports", "spc_run_FY2025.json")},
		{paths.LogPath(day), filepath.Join("reports", "run_log_20240709.log")},
		{paths.TracePath(day), filepath.Join("reports", "traces_20240709.jsonl")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}
