package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the resolved application paths.
// Every file the pipeline reads or writes is named here.
type Paths struct {
	BaseDir      string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	ChartsDir    string
}

// ResolvePaths resolves the configured directories against the base directory
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:      base,
		RawDir:       resolve(c.Paths.RawDir),
		ProcessedDir: resolve(c.Paths.ProcessedDir),
		ReportsDir:   resolve(c.Paths.ReportsDir),
		ChartsDir:    resolve(c.Paths.ChartsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.ChartsDir,
	}

	logger := slog.Default()
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// RawEventsCSV is the snapshot of extracted events before standardisation
func (p *Paths) RawEventsCSV() string {
	return filepath.Join(p.RawDir, "infection_events_raw.csv")
}

// ProcessedEventsCSV is the standardised event table
func (p *Paths) ProcessedEventsCSV() string {
	return filepath.Join(p.ProcessedDir, "infection_events_processed.csv")
}

// FlaggedCSV is the daily SPC table for fiscal year fy
func (p *Paths) FlaggedCSV(fy int) string {
	return filepath.Join(p.ProcessedDir, fmt.Sprintf("daily_spc_flagged_FY%d.csv", fy))
}

// SummaryCSV is the status count table
func (p *Paths) SummaryCSV() string {
	return filepath.Join(p.ReportsDir, "spc_breach_summary.csv")
}

// ValidationJSON is the data quality report
func (p *Paths) ValidationJSON() string {
	return filepath.Join(p.ReportsDir, "validation_summary.json")
}

// WorkbookPath is the XLSX report for fiscal year fy
func (p *Paths) WorkbookPath(fy int) string {
	return filepath.Join(p.ReportsDir, fmt.Sprintf("spc_report_FY%d.xlsx", fy))
}

// RunReportPath is the JSON run report for fiscal year fy
func (p *Paths) RunReportPath(fy int) string {
	return filepath.Join(p.ReportsDir, fmt.Sprintf("spc_run_FY%d.json", fy))
}

// RunReportPattern matches every persisted run report
func (p *Paths) RunReportPattern() string {
	return filepath.Join(p.ReportsDir, "spc_run_FY*.json")
}

// LogPath is the dated run log
func (p *Paths) LogPath(now time.Time) string {
	return filepath.Join(p.ReportsDir, fmt.Sprintf("run_log_%s.log", now.Format("20060102")))
}

// TracePath is the dated trace export
func (p *Paths) TracePath(now time.Time) string {
	return filepath.Join(p.ReportsDir, fmt.Sprintf("traces_%s.jsonl", now.Format("20060102")))
}

// MetricsPath is the Prometheus textfile written after each run
func (p *Paths) MetricsPath() string {
	return filepath.Join(p.ReportsDir, "spc_metrics.prom")
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
