// Package exporter persists the outputs of an SPC run.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming and an optional UTF-8 BOM for Excel compatibility.
//
// SPCExporter: Writes the raw and processed event snapshots, the daily
// flagged table, the breach summary and the validation report.
//
// WorkbookExporter: Builds an XLSX workbook with Flagged, Summary and Limits
// sheets.
//
// Exporter combines both and writes every file of a run concurrently:
//
//	exp := exporter.New(paths, logger)
//	outputs, err := exp.Export(ctx, exporter.Bundle{
//	    Raw:    &raw,
//	    Events: &table,
//	    Report: &runReport,
//	})
package exporter
