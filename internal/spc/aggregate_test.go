package spc

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/pkg/contracts/domain"
)

func event(id string, date time.Time) domain.EventRecord {
	return domain.EventRecord{EventID: id, CollectionDate: date}
}

func counts(start time.Time, values ...int) []domain.DailyCount {
	out := make([]domain.DailyCount, len(values))
	for i, v := range values {
		out[i] = domain.DailyCount{Date: start.AddDate(0, 0, i), Count: v}
	}
	return out
}

func TestAggregateDaily(t *testing.T) {
	records := []domain.EventRecord{
		event("3", domain.Date(2024, 1, 3)),
		event("1", time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)),
		event("2", time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)),
		{EventID: "4", RawCollectionDate: "not a date"},
		{EventID: "5"},
	}

	agg := AggregateDaily(records)

	assert.Equal(t, 2, agg.InvalidDates)
	assert.Equal(t, []domain.DailyCount{
		{Date: domain.Date(2024, 1, 1), Count: 2},
		{Date: domain.Date(2024, 1, 3), Count: 1},
	}, agg.Days)
	assert.Len(t, records, 5, "input must not be modified")
}

func TestAggregateDailyEmpty(t *testing.T) {
	agg := AggregateDaily(nil)
	assert.Empty(t, agg.Days)
	assert.Zero(t, agg.InvalidDates)
}

func TestFillGaps(t *testing.T) {
	series := []domain.DailyCount{
		{Date: domain.Date(2024, 1, 1), Count: 2},
		{Date: domain.Date(2024, 1, 4), Count: 5},
	}

	t.Run("inferred bounds", func(t *testing.T) {
		filled, err := FillGaps(series, Bounds{})
		require.NoError(t, err)
		assert.Equal(t, counts(domain.Date(2024, 1, 1), 2, 0, 0, 5), filled)
	})

	t.Run("explicit bounds extend the range", func(t *testing.T) {
		filled, err := FillGaps(series, Bounds{Start: domain.Date(2023, 12, 30), End: domain.Date(2024, 1, 5)})
		require.NoError(t, err)
		assert.Equal(t, counts(domain.Date(2023, 12, 30), 0, 0, 2, 0, 0, 5, 0), filled)
	})

	t.Run("explicit bounds drop outside entries", func(t *testing.T) {
		filled, err := FillGaps(series, Bounds{Start: domain.Date(2024, 1, 2), End: domain.Date(2024, 1, 4)})
		require.NoError(t, err)
		assert.Equal(t, counts(domain.Date(2024, 1, 2), 0, 0, 5), filled)
	})

	t.Run("unsorted input", func(t *testing.T) {
		filled, err := FillGaps([]domain.DailyCount{series[1], series[0]}, Bounds{})
		require.NoError(t, err)
		assert.Equal(t, counts(domain.Date(2024, 1, 1), 2, 0, 0, 5), filled)
	})

	t.Run("empty series with bounds", func(t *testing.T) {
		filled, err := FillGaps(nil, Bounds{Start: domain.Date(2024, 2, 27), End: domain.Date(2024, 3, 1)})
		require.NoError(t, err)
		assert.Equal(t, counts(domain.Date(2024, 2, 27), 0, 0, 0, 0), filled)
	})

	t.Run("input untouched", func(t *testing.T) {
		before := append([]domain.DailyCount(nil), series...)
		_, err := FillGaps(series, Bounds{})
		require.NoError(t, err)
		assert.Equal(t, before, series)
	})
}

func TestFillGapsErrors(t *testing.T) {
	tests := []struct {
		name    string
		series  []domain.DailyCount
		bounds  Bounds
		wantErr error
	}{
		{"empty without bounds", nil, Bounds{}, ErrEmptySeries},
		{"empty with only start", nil, Bounds{Start: domain.Date(2024, 1, 1)}, ErrEmptySeries},
		{"start after end", counts(domain.Date(2024, 1, 1), 1), Bounds{Start: domain.Date(2024, 2, 1), End: domain.Date(2024, 1, 1)}, ErrInvalidRange},
		{"duplicate date", []domain.DailyCount{{Date: domain.Date(2024, 1, 1), Count: 1}, {Date: domain.Date(2024, 1, 1), Count: 2}}, Bounds{}, ErrDuplicateDate},
		{"zero date", []domain.DailyCount{{Count: 1}}, Bounds{}, ErrInvalidDate},
		{"negative count", []domain.DailyCount{{Date: domain.Date(2024, 1, 1), Count: 3}, {Date: domain.Date(2024, 1, 2), Count: -1}}, Bounds{}, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FillGaps(tt.series, tt.bounds)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFillGapsNegativeCountNamesDay(t *testing.T) {
	_, err := FillGaps([]domain.DailyCount{{Date: domain.Date(2024, 3, 5), Count: -2}}, Bounds{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.Contains(t, err.Error(), "2024-03-05")
	assert.Contains(t, err.Error(), "min")
}

// TestFillGapsProperties checks contiguity and count preservation over random sparse series.
func TestFillGapsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	origin := domain.Date(2023, 1, 1)

	for i := 0; i < 50; i++ {
		seen := make(map[int]bool)
		var series []domain.DailyCount
		for j := 0; j < 1+rng.Intn(30); j++ {
			offset := rng.Intn(400)
			if seen[offset] {
				continue
			}
			seen[offset] = true
			series = append(series, domain.DailyCount{Date: origin.AddDate(0, 0, offset), Count: rng.Intn(10)})
		}

		filled, err := FillGaps(series, Bounds{})
		require.NoError(t, err)

		start, end := filled[0].Date, filled[len(filled)-1].Date
		assert.Equal(t, domain.DaysBetween(start, end), len(filled))
		for k := 1; k < len(filled); k++ {
			assert.Equal(t, filled[k-1].Date.AddDate(0, 0, 1), filled[k].Date)
		}

		byDate := make(map[time.Time]int, len(filled))
		for _, d := range filled {
			byDate[d.Date] = d.Count
		}
		for _, d := range series {
			assert.Equal(t, d.Count, byDate[d.Date])
		}
	}
}
