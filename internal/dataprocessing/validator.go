package dataprocessing

import (
	"log/slog"

	"spccli/pkg/contracts/domain"
)

// ValidateEvents computes data quality metrics for a standardised table
// without modifying it. Metrics for absent columns are left nil.
func ValidateEvents(table domain.EventTable) domain.ValidationReport {
	report := domain.ValidationReport{RowCount: len(table.Records)}

	if table.HasColumn(domain.ColumnCollectionDate) {
		nulls := 0
		var minDate, maxDate string
		for _, r := range table.Records {
			if !r.HasDate() {
				nulls++
				continue
			}
			d := domain.FormatDay(r.CollectionDate)
			if minDate == "" || d < minDate {
				minDate = d
			}
			if d > maxDate {
				maxDate = d
			}
		}
		report.NullCollectionDate = &nulls
		if minDate != "" {
			report.MinDate = &minDate
			report.MaxDate = &maxDate
		}
	}

	if table.HasColumn(domain.ColumnEventID) {
		seen := make(map[string]struct{}, len(table.Records))
		dups := 0
		for _, r := range table.Records {
			if _, ok := seen[r.EventID]; ok {
				dups++
				continue
			}
			seen[r.EventID] = struct{}{}
		}
		report.DuplicateEventID = &dups
	}

	return report
}

// LogAttrs returns the report as slog attributes, omitting absent metrics.
func LogAttrs(report domain.ValidationReport) []slog.Attr {
	attrs := []slog.Attr{slog.Int("row_count", report.RowCount)}
	if report.NullCollectionDate != nil {
		attrs = append(attrs, slog.Int("null_collectiondate", *report.NullCollectionDate))
	}
	if report.DuplicateEventID != nil {
		attrs = append(attrs, slog.Int("duplicate_eventid", *report.DuplicateEventID))
	}
	if report.MinDate != nil {
		attrs = append(attrs, slog.String("min_date", *report.MinDate))
	}
	if report.MaxDate != nil {
		attrs = append(attrs, slog.String("max_date", *report.MaxDate))
	}
	return attrs
}
