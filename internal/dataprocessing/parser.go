package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"spccli/pkg/contracts/domain"
)

// ErrNoHeader is returned when no row of a sheet looks like an event header.
var ErrNoHeader = errors.New("could not find event header row")

// ParseCSV reads a CSV event table whose first row is the header.
func ParseCSV(r io.Reader) (domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return domain.RawTable{}, ErrNoHeader
	}

	return buildTable(records[0], records[1:]), nil
}

// ParseCSVFile opens path and reads it with ParseCSV.
func ParseCSVFile(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseWorkbook reads an event table from an XLSX workbook. When sheet is
// empty the first sheet with a recognisable header row is used.
func ParseWorkbook(path, sheet string) (domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet != "" {
		sheets = []string{sheet}
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			if sheet != "" {
				return domain.RawTable{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
			}
			continue
		}

		headerRow := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}

		slog.Debug("found event table",
			slog.String("sheet_name", name),
			slog.Int("header_row", headerRow),
			slog.Int("total_rows", len(rows)))

		return buildTable(rows[headerRow], rows[headerRow+1:]), nil
	}

	return domain.RawTable{}, ErrNoHeader
}

// findHeaderRow returns the first of the leading rows that names a collection
// date column, or -1.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if i >= 10 {
			break
		}
		for _, cell := range row {
			if isDateColumn(strings.TrimSpace(cell)) {
				return i
			}
		}
	}
	return -1
}

// buildTable pads or truncates every data row to the header width and drops
// rows that are entirely blank.
func buildTable(header []string, rows [][]string) domain.RawTable {
	table := domain.RawTable{Columns: make([]string, len(header))}
	copy(table.Columns, header)

	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
