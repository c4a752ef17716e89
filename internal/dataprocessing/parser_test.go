package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "EventID,CollectionDate,Department\nE1,2024-04-01,ICU\nE2,2024-04-02\n,,\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"EventID", "CollectionDate", "Department"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "ICU", table.Value(0, "Department"))
	assert.Equal(t, "", table.Value(1, "Department"))
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date\n2024-04-01\n"), 0644))

	table, err := ParseCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", table.Value(0, "Date"))

	_, err = ParseCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

// TestParseWorkbook builds a workbook whose event table starts below a title
// row on its second sheet.
func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "cover page")

	_, err := f.NewSheet("Events")
	require.NoError(t, err)
	f.SetCellValue("Events", "A1", "Infection events export")
	f.SetSheetRow("Events", "A3", &[]interface{}{"EventID", "Collection_Date"})
	f.SetSheetRow("Events", "A4", &[]interface{}{"E1", "2024-04-01"})
	f.SetSheetRow("Events", "A5", &[]interface{}{"E2", "2024-04-03"})

	path := filepath.Join(t.TempDir(), "events.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := ParseWorkbook(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"EventID", "Collection_Date"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "2024-04-03", table.Value(1, "Collection_Date"))

	_, err = ParseWorkbook(path, "Sheet1")
	assert.ErrorIs(t, err, ErrNoHeader)
}
