package spc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/pkg/contracts/domain"
)

func TestSplitBaselineAndCurrent(t *testing.T) {
	series := []domain.DailyCount{
		{Date: domain.Date(2022, 3, 31), Count: 9}, // FY2022, neither period
		{Date: domain.Date(2022, 4, 1), Count: 1},  // FY2023 baseline
		{Date: domain.Date(2023, 3, 31), Count: 2}, // FY2023 baseline
		{Date: domain.Date(2023, 4, 1), Count: 3},  // FY2024 current
		{Date: domain.Date(2023, 6, 1), Count: 4},  // FY2024 current
	}

	t.Run("inferred fiscal year", func(t *testing.T) {
		split, err := SplitBaselineAndCurrent(series, nil, time.April)
		require.NoError(t, err)
		assert.Equal(t, 2024, split.CurrentFY)
		assert.Equal(t, 2023, split.BaselineFY)
		assert.Equal(t, series[1:3], split.Baseline)
		assert.Equal(t, series[3:], split.Current)
	})

	t.Run("explicit fiscal year", func(t *testing.T) {
		fy := 2023
		split, err := SplitBaselineAndCurrent(series, &fy, time.April)
		require.NoError(t, err)
		assert.Equal(t, 2022, split.BaselineFY)
		assert.Equal(t, series[:1], split.Baseline)
		assert.Equal(t, series[1:3], split.Current)
	})

	t.Run("explicit fiscal year with no data", func(t *testing.T) {
		fy := 2030
		split, err := SplitBaselineAndCurrent(series, &fy, time.April)
		require.NoError(t, err)
		assert.Empty(t, split.Baseline)
		assert.Empty(t, split.Current)
	})
}

func TestSplitEmptyBaselineIsNotAnError(t *testing.T) {
	series, err := FillGaps(nil, Bounds{Start: domain.Date(2023, 4, 1), End: domain.Date(2024, 3, 31)})
	require.NoError(t, err)

	split, err := SplitBaselineAndCurrent(series, nil, time.April)
	require.NoError(t, err)
	assert.Equal(t, 2024, split.CurrentFY)
	assert.Empty(t, split.Baseline)
	assert.Len(t, split.Current, 366)

	_, err = EstimateLimits(split.Baseline)
	assert.ErrorIs(t, err, ErrEmptyBaseline)
}

func TestSplitErrors(t *testing.T) {
	_, err := SplitBaselineAndCurrent(nil, nil, time.April)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = SplitBaselineAndCurrent(counts(domain.Date(2024, 1, 1), 1), nil, time.Month(0))
	assert.ErrorIs(t, err, ErrInvalidStartMonth)
}
