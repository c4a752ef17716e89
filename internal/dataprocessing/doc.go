// Package dataprocessing turns raw event tables into the standardised schema
// used by the SPC core and checks their quality.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads CSV and XLSX event tables with a header row
// 2. Standardiser: harmonises column names, coerces dates and keeps the known columns
// 3. Validator: reports row counts, missing dates, duplicate ids and the date range
//
// # Usage
//
//	raw, err := dataprocessing.ParseWorkbook("events.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	table, err := dataprocessing.Standardise(raw)
//	if err != nil {
//	    return err
//	}
//	report := dataprocessing.ValidateEvents(table)
//
// # Data Flow
//
//	Source → RawTable → Standardise → EventTable → ValidateEvents → ValidationReport
//
// # Error Handling
//
// A table without any recognised collection date column fails with
// ErrMissingColumn. Cells that cannot be parsed as dates do not fail; the
// record keeps a zero date and the raw text so that it can be counted.
package dataprocessing
