// Package spc implements Statistical Process Control over daily infection counts.
//
// The package turns a list of infection events into a classified daily series.
// Control limits come from the previous fiscal year (the baseline). Every day of
// the current fiscal year is then flagged against them.
//
// # Core Components
//
//  1. Fiscal calendar: maps a date to the fiscal year it belongs to
//  2. Aggregation: counts events per calendar day and zero-fills missing days
//  3. Period split: separates the baseline year from the current year
//  4. Limits: mean, sample standard deviation, warning (2 SD) and control (3 SD) limits
//  5. Classification and summary: per-day status and status counts
//
// # Architecture
//
//   - fiscal.go: FiscalYearOf and FiscalYearBounds
//   - aggregate.go: AggregateDaily and FillGaps
//   - split.go: SplitBaselineAndCurrent
//   - limits.go: EstimateLimits
//   - classify.go: ClassifyCount and Classify
//   - summary.go: Summarise
//   - analysis.go: Analyse, the end-to-end flow used by the pipeline
//
// All functions are pure. Inputs are never modified and every result is a
// new slice, so results can be shared between goroutines once produced.
//
// # Usage Example
//
//	analysis, err := spc.Analyse(records, spc.DefaultOptions())
//	if errors.Is(err, spc.ErrEmptyBaseline) {
//	    // the previous fiscal year has no data
//	}
//	for _, day := range analysis.Flagged {
//	    fmt.Println(day.Date.Format("2006-01-02"), day.Count, day.Status)
//	}
package spc
