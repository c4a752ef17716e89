package spc

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"spccli/pkg/contracts/domain"
)

var validate = validator.New()

// DailyAggregate is the result of counting events per calendar day.
type DailyAggregate struct {
	// Days holds one entry per day that has at least one event, ascending.
	Days []domain.DailyCount
	// InvalidDates counts records excluded because their date was missing or unparseable.
	InvalidDates int
}

// Bounds is an inclusive calendar range. A zero Start or End is inferred
// from the series being filled.
type Bounds struct {
	Start time.Time
	End   time.Time
}

// AggregateDaily counts records per calendar day. Records without a usable
// date are not silently dropped: they are counted in InvalidDates.
func AggregateDaily(records []domain.EventRecord) DailyAggregate {
	counts := make(map[time.Time]int)
	invalid := 0
	for _, r := range records {
		if !r.HasDate() {
			invalid++
			continue
		}
		counts[r.Day()]++
	}

	days := make([]domain.DailyCount, 0, len(counts))
	for date, n := range counts {
		days = append(days, domain.DailyCount{Date: date, Count: n})
	}
	sortByDate(days)

	return DailyAggregate{Days: days, InvalidDates: invalid}
}

// FillGaps returns a contiguous daily series covering bounds, inserting a
// zero count for every missing day. Existing counts are kept as they are and
// entries outside the bounds are dropped. Negative counts are rejected.
func FillGaps(series []domain.DailyCount, bounds Bounds) ([]domain.DailyCount, error) {
	byDate := make(map[time.Time]int, len(series))
	var minDate, maxDate time.Time
	for _, d := range series {
		day := domain.Day(d.Date)
		if day.IsZero() {
			return nil, &DateError{Op: "fill gaps", Err: ErrInvalidDate}
		}
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("%w on %s: %v", ErrInvalidCount, domain.FormatDay(day), err)
		}
		if _, dup := byDate[day]; dup {
			return nil, &DateError{Op: "fill gaps", Value: domain.FormatDay(day), Err: ErrDuplicateDate}
		}
		byDate[day] = d.Count
		if minDate.IsZero() || day.Before(minDate) {
			minDate = day
		}
		if maxDate.IsZero() || day.After(maxDate) {
			maxDate = day
		}
	}

	start, end := domain.Day(bounds.Start), domain.Day(bounds.End)
	if start.IsZero() {
		start = minDate
	}
	if end.IsZero() {
		end = maxDate
	}
	if start.IsZero() || end.IsZero() {
		return nil, ErrEmptySeries
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, domain.FormatDay(start), domain.FormatDay(end))
	}

	filled := make([]domain.DailyCount, 0, domain.DaysBetween(start, end))
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		filled = append(filled, domain.DailyCount{Date: day, Count: byDate[day]})
	}
	return filled, nil
}

func sortByDate(days []domain.DailyCount) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
}
