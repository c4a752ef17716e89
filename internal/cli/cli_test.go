package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/internal/spc"
)

// runCLI runs the root command against a fresh base directory with the
// synthetic source and returns the command output.
func runCLI(t *testing.T, baseDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SPC_SOURCE_KIND", "synthetic")
	t.Setenv("SPC_LOGGING_OUTPUT", "file")

	var out bytes.Buffer
	argv := append([]string{"spc", "--base-dir", baseDir}, args...)
	err := newCommand(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "Source: synthetic")
	assert.Contains(t, out, "Baseline FY: FY2021 | Current FY: FY2022")
	assert.Contains(t, out, "(364 baseline days)")
	assert.Contains(t, out, "3 SD Breach")

	reports := filepath.Join(dir, "outputs", "reports")
	for _, name := range []string{"spc_run_FY2022.json", "spc_breach_summary.csv", "spc_report_FY2022.xlsx"} {
		assert.FileExists(t, filepath.Join(reports, name))
	}
	assert.FileExists(t, filepath.Join(dir, "data", "processed", "daily_spc_flagged_FY2022.csv"))
	assert.NoFileExists(t, filepath.Join(reports, "daily_spc_flagged_FY2022.csv"))

	traces, err := filepath.Glob(filepath.Join(reports, "traces_*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, traces, 1)

	f, err := os.Open(filepath.Join(reports, "spc_metrics.prom"))
	require.NoError(t, err)
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	require.NoError(t, err)
	runs, ok := families["spc_runs_total"]
	require.True(t, ok, "spc_runs_total missing")
	assert.Equal(t, 1.0, runs.GetMetric()[0].GetCounter().GetValue())
}

func TestRunCommand_EmptyBaseline(t *testing.T) {
	// FY2021 is the first fiscal year of the synthetic data, so FY2020 is empty.
	out, err := runCLI(t, t.TempDir(), "run", "--current-fy", "2021")
	require.Error(t, err)
	assert.ErrorIs(t, err, spc.ErrEmptyBaseline)
	assert.Contains(t, out, "failed")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "validate")
	require.NoError(t, err)

	assert.Contains(t, out, "validate")
	assert.Contains(t, out, "snapshot")
	assert.NotContains(t, out, "Baseline FY")

	assert.FileExists(t, filepath.Join(dir, "data", "raw", "infection_events_raw.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "outputs", "reports", "spc_breach_summary.csv"))
}

func TestSyntheticCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "week.csv")

	out, err := runCLI(t, dir, "synthetic", "--from", "2024-01-01", "--to", "2024-01-07", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 7 events from 2024-01-01 to 2024-01-07")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "EventID,CollectionDate", lines[0])
}

func TestSyntheticCommand_DefaultPath(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "synthetic", "--from", "2024-01-01", "--to", "2024-01-02")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "data", "raw", SyntheticFileName))
}

func TestSyntheticCommand_ReversedRange(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "synthetic", "--from", "2024-02-01", "--to", "2024-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid synthetic range")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "--log-level", "loud", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command line options")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "--config", filepath.Join(t.TempDir(), "missing.yaml"), "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
