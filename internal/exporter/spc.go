package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spccli/pkg/contracts/domain"
)

// Column headers of the SPC tables.
var (
	FlaggedHeaders = []string{"CollectionDate", "DailyCases", "Mean", "UWL_2SD", "UCL_3SD", "SPCStatus"}
	SummaryHeaders = []string{"SPCStatus", "Days"}
)

// SPCExporter writes the CSV and JSON outputs of a run
type SPCExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewSPCExporter creates a new SPC exporter
func NewSPCExporter(logger *slog.Logger) *SPCExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SPCExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// WriteRawEvents streams the extracted table as it was read
func (e *SPCExporter) WriteRawEvents(path string, raw domain.RawTable) error {
	stream, err := e.csvWriter.CreateStreamWriter(path, raw.Columns, false)
	if err != nil {
		return fmt.Errorf("failed to write raw events: %w", err)
	}
	for _, row := range raw.Rows {
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write raw events: %w", err)
		}
	}
	return stream.Close()
}

// WriteProcessedEvents writes the standardised table with its kept columns
func (e *SPCExporter) WriteProcessedEvents(path string, table domain.EventTable) error {
	records := make([][]string, 0, len(table.Records))
	for _, r := range table.Records {
		row := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = eventField(r, col)
		}
		records = append(records, row)
	}

	if err := e.csvWriter.WriteCSV(path, WriteOptions{Headers: table.Columns, Records: records}); err != nil {
		return fmt.Errorf("failed to write processed events: %w", err)
	}
	return nil
}

func eventField(r domain.EventRecord, column string) string {
	switch column {
	case domain.ColumnEventID:
		return r.EventID
	case domain.ColumnCollectionDate:
		return domain.FormatDay(r.CollectionDate)
	case domain.ColumnDepartment:
		return r.Department
	case domain.ColumnLocation:
		return r.Location
	case domain.ColumnMetricValue:
		return r.MetricValue
	}
	return ""
}

// WriteFlagged writes one row per classified day
func (e *SPCExporter) WriteFlagged(path string, flagged []domain.FlaggedDay) error {
	records := make([][]string, 0, len(flagged))
	for _, d := range flagged {
		records = append(records, FlaggedRow(d))
	}

	if err := e.csvWriter.WriteCSV(path, WriteOptions{Headers: FlaggedHeaders, Records: records}); err != nil {
		return fmt.Errorf("failed to write flagged days: %w", err)
	}
	return nil
}

// FlaggedRow converts a classified day to CSV cells in FlaggedHeaders order
func FlaggedRow(d domain.FlaggedDay) []string {
	return []string{
		domain.FormatDay(d.Date),
		formatInt(d.Count),
		formatFloat(d.Limits.Mean),
		formatFloat(d.Limits.UpperWarning),
		formatFloat(d.Limits.UpperControl),
		string(d.Status),
	}
}

// WriteSummary writes the status counts
func (e *SPCExporter) WriteSummary(path string, summary []domain.StatusCount) error {
	records := make([][]string, 0, len(summary))
	for _, s := range summary {
		records = append(records, []string{string(s.Status), formatInt(s.Days)})
	}

	if err := e.csvWriter.WriteCSV(path, WriteOptions{Headers: SummaryHeaders, Records: records}); err != nil {
		return fmt.Errorf("failed to write breach summary: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON
func (e *SPCExporter) WriteJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	e.logger.Debug("Wrote JSON file", slog.String("file_path", path))
	return nil
}
