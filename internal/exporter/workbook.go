package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"spccli/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	SheetFlagged = "Flagged"
	SheetSummary = "Summary"
	SheetLimits  = "Limits"
)

// WorkbookExporter builds the XLSX report of a run
type WorkbookExporter struct{}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// WriteWorkbook writes the flagged days, the status summary and the control
// limits of report to path
func (w *WorkbookExporter) WriteWorkbook(path string, report domain.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetFlagged); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetLimits} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	alert, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeRow(f, SheetFlagged, 1, toCells(FlaggedHeaders), header); err != nil {
		return err
	}
	for i, d := range report.Flagged {
		row := []interface{}{
			domain.FormatDay(d.Date),
			d.Count,
			d.Limits.Mean,
			d.Limits.UpperWarning,
			d.Limits.UpperControl,
			string(d.Status),
		}
		style := 0
		if d.Status == domain.StatusBreach3SD {
			style = alert
		}
		if err := writeRow(f, SheetFlagged, i+2, row, style); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetSummary, 1, toCells(SummaryHeaders), header); err != nil {
		return err
	}
	for i, s := range report.Summary {
		if err := writeRow(f, SheetSummary, i+2, []interface{}{string(s.Status), s.Days}, 0); err != nil {
			return err
		}
	}

	limits := [][]interface{}{
		{"Metric", "Value"},
		{"BaselineFY", fmt.Sprintf("FY%d", report.BaselineFY)},
		{"CurrentFY", fmt.Sprintf("FY%d", report.CurrentFY)},
		{"BaselineDays", report.Limits.BaselineDays},
		{"Mean", report.Limits.Mean},
		{"Std", report.Limits.Std},
		{"UWL_2SD", report.Limits.UpperWarning},
		{"UCL_3SD", report.Limits.UpperControl},
	}
	for i, row := range limits {
		style := 0
		if i == 0 {
			style = header
		}
		if err := writeRow(f, SheetLimits, i+1, row, style); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}
