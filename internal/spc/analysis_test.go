package spc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/pkg/contracts/domain"
)

// eventsFor expands daily counts into one record per event.
func eventsFor(series []domain.DailyCount) []domain.EventRecord {
	var records []domain.EventRecord
	for _, d := range series {
		for i := 0; i < d.Count; i++ {
			records = append(records, event("", d.Date.Add(time.Duration(i)*time.Hour)))
		}
	}
	return records
}

func TestBaselineToBreachFlow(t *testing.T) {
	// 2023-03-25..2023-03-31 is the end of FY2023; 2023-04-01 opens FY2024.
	series := counts(domain.Date(2023, 3, 25), 0, 1, 2, 1, 0, 1, 2, 8)

	split, err := SplitBaselineAndCurrent(series, nil, time.April)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 1, 0, 1, 2}, countsOf(split.Baseline))

	limits, err := EstimateLimits(split.Baseline)
	require.NoError(t, err)

	flagged := Classify(split.Current, limits)
	require.Len(t, flagged, 1)
	assert.Equal(t, 8, flagged[0].Count)
	assert.Equal(t, domain.StatusBreach3SD, flagged[0].Status)
}

func TestAnalyse(t *testing.T) {
	records := eventsFor(counts(domain.Date(2023, 3, 26), 1, 2, 1, 0, 1, 2))
	records = append(records, eventsFor(counts(domain.Date(2023, 4, 1), 3, 0, 8))...)
	records = append(records, domain.EventRecord{EventID: "bad", RawCollectionDate: "31/31/2023"})

	analysis, err := Analyse(records, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.Aggregate.InvalidDates)
	assert.Equal(t, 2024, analysis.CurrentFY)
	assert.Equal(t, 2023, analysis.BaselineFY)
	assert.Len(t, analysis.Series, 9)
	assert.Equal(t, []int{1, 2, 1, 0, 1, 2}, countsOf(analysis.Baseline))
	assert.Equal(t, []int{3, 0, 8}, countsOf(analysis.Current))

	mean := 7.0 / 6.0
	assert.InDelta(t, mean, analysis.Limits.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt((17.0/6.0)/5.0), analysis.Limits.Std, 1e-12)
	assert.Equal(t, 2023, analysis.Limits.BaselineFY)

	require.Len(t, analysis.Flagged, 3)
	assert.Equal(t, domain.StatusWarning2SD, analysis.Flagged[0].Status)
	assert.Equal(t, domain.StatusWithinRange, analysis.Flagged[1].Status)
	assert.Equal(t, domain.StatusBreach3SD, analysis.Flagged[2].Status)
	assert.Equal(t, len(analysis.Flagged), analysis.Summary.Total())
}

func TestAnalyseFillFullFiscalYear(t *testing.T) {
	records := eventsFor(counts(domain.Date(2023, 3, 26), 1, 2, 1, 0, 1, 2))
	records = append(records, eventsFor(counts(domain.Date(2023, 4, 1), 3, 0, 8))...)

	opts := DefaultOptions()
	opts.FillFullFiscalYear = true

	analysis, err := Analyse(records, opts)
	require.NoError(t, err)

	require.Len(t, analysis.Baseline, 365)
	assert.Equal(t, domain.Date(2022, 4, 1), analysis.Baseline[0].Date)
	assert.Equal(t, domain.Date(2023, 3, 31), analysis.Baseline[364].Date)
	assert.Equal(t, 365, analysis.Limits.BaselineDays)
	assert.InDelta(t, 7.0/365.0, analysis.Limits.Mean, 1e-12)

	assert.Equal(t, domain.Date(2023, 4, 1), analysis.Current[0].Date)
	assert.Equal(t, domain.StatusBreach3SD, analysis.Flagged[0].Status)
	assert.Equal(t, domain.StatusWithinRange, analysis.Flagged[1].Status)
	assert.Equal(t, domain.StatusBreach3SD, analysis.Flagged[2].Status)
}

func TestAnalyseErrors(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		_, err := Analyse(nil, DefaultOptions())
		assert.ErrorIs(t, err, ErrEmptySeries)
	})

	t.Run("only invalid dates", func(t *testing.T) {
		analysis, err := Analyse([]domain.EventRecord{{EventID: "x"}}, DefaultOptions())
		assert.ErrorIs(t, err, ErrEmptySeries)
		assert.Equal(t, 1, analysis.Aggregate.InvalidDates)
	})

	t.Run("single fiscal year", func(t *testing.T) {
		records := eventsFor(counts(domain.Date(2023, 4, 1), 1, 1, 2))
		analysis, err := Analyse(records, DefaultOptions())
		assert.ErrorIs(t, err, ErrEmptyBaseline)
		assert.Equal(t, 2024, analysis.CurrentFY)
		assert.Equal(t, 2023, analysis.BaselineFY)
	})

	t.Run("explicit fiscal year without current data", func(t *testing.T) {
		fy := 2023
		records := eventsFor(counts(domain.Date(2022, 3, 30), 1, 2))
		analysis, err := Analyse(records, Options{FYStartMonth: time.April, CurrentFY: &fy})
		require.NoError(t, err)
		assert.Empty(t, analysis.Flagged)
		assert.Zero(t, analysis.Summary.Total())
	})
}

func countsOf(series []domain.DailyCount) []int {
	out := make([]int, len(series))
	for i, d := range series {
		out[i] = d.Count
	}
	return out
}
