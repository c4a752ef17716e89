package spc

import (
	"fmt"
	"time"

	"spccli/pkg/contracts/domain"
)

// Options configures an end-to-end analysis.
type Options struct {
	// FYStartMonth is the first month of the fiscal year.
	FYStartMonth time.Month
	// CurrentFY overrides the fiscal year inferred from the latest event.
	CurrentFY *int
	// FillFullFiscalYear fills the baseline over its whole fiscal year and the
	// current period from the start of its fiscal year, instead of filling
	// each between its own first and last observed day.
	FillFullFiscalYear bool
}

// DefaultOptions returns options with an April fiscal year start.
func DefaultOptions() Options {
	return Options{FYStartMonth: DefaultFYStartMonth}
}

// Analysis holds every intermediate and final result of a run.
type Analysis struct {
	Aggregate  DailyAggregate
	Series     []domain.DailyCount
	Baseline   []domain.DailyCount
	Current    []domain.DailyCount
	CurrentFY  int
	BaselineFY int
	Limits     domain.ControlLimits
	Flagged    []domain.FlaggedDay
	Summary    domain.BreachSummary
}

// Analyse runs aggregation, gap filling, the fiscal split, limit estimation,
// classification and summary over records. On failure the returned Analysis
// holds whatever was computed before the failing step.
func Analyse(records []domain.EventRecord, opts Options) (Analysis, error) {
	if opts.FYStartMonth == 0 {
		opts.FYStartMonth = DefaultFYStartMonth
	}

	var a Analysis
	a.Aggregate = AggregateDaily(records)

	series, err := FillGaps(a.Aggregate.Days, Bounds{})
	if err != nil {
		return a, fmt.Errorf("failed to fill daily series: %w", err)
	}
	a.Series = series

	split, err := SplitBaselineAndCurrent(series, opts.CurrentFY, opts.FYStartMonth)
	if err != nil {
		return a, fmt.Errorf("failed to split fiscal periods: %w", err)
	}
	a.CurrentFY, a.BaselineFY = split.CurrentFY, split.BaselineFY

	// An empty baseline is reported rather than filled with zeros.
	if len(split.Baseline) == 0 {
		return a, fmt.Errorf("no data for FY%d: %w", split.BaselineFY, ErrEmptyBaseline)
	}

	baselineBounds := Bounds{}
	if opts.FillFullFiscalYear {
		start, end, err := FiscalYearBounds(split.BaselineFY, opts.FYStartMonth)
		if err != nil {
			return a, err
		}
		baselineBounds = Bounds{Start: start, End: end}
	}
	if a.Baseline, err = FillGaps(split.Baseline, baselineBounds); err != nil {
		return a, fmt.Errorf("failed to fill baseline: %w", err)
	}

	if len(split.Current) > 0 {
		currentBounds := Bounds{}
		if opts.FillFullFiscalYear {
			start, _, err := FiscalYearBounds(split.CurrentFY, opts.FYStartMonth)
			if err != nil {
				return a, err
			}
			currentBounds.Start = start
		}
		if a.Current, err = FillGaps(split.Current, currentBounds); err != nil {
			return a, fmt.Errorf("failed to fill current period: %w", err)
		}
	}

	limits, err := EstimateLimits(a.Baseline)
	if err != nil {
		return a, err
	}
	limits.BaselineFY = split.BaselineFY
	a.Limits = limits

	a.Flagged = Classify(a.Current, limits)
	a.Summary = Summarise(a.Flagged)
	return a, nil
}
