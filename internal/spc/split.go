package spc

import (
	"time"

	"spccli/pkg/contracts/domain"
)

// Split is a daily series divided into the baseline and current fiscal years.
type Split struct {
	Baseline   []domain.DailyCount
	Current    []domain.DailyCount
	CurrentFY  int
	BaselineFY int
}

// SplitBaselineAndCurrent partitions series by fiscal year. When currentFY
// is nil it is taken from the latest date in the series. The baseline is the
// fiscal year before it.
//
// The slices keep only days present in series and are not guaranteed to be
// contiguous; callers should fill each slice again. An empty baseline is
// not an error here.
func SplitBaselineAndCurrent(series []domain.DailyCount, currentFY *int, startMonth time.Month) (Split, error) {
	if err := checkStartMonth(startMonth); err != nil {
		return Split{}, err
	}

	fy := 0
	if currentFY != nil {
		fy = *currentFY
	} else {
		var maxDate time.Time
		for _, d := range series {
			if d.Date.After(maxDate) {
				maxDate = d.Date
			}
		}
		if maxDate.IsZero() {
			return Split{}, ErrEmptySeries
		}
		inferred, err := FiscalYearOf(maxDate, startMonth)
		if err != nil {
			return Split{}, err
		}
		fy = inferred
	}

	split := Split{CurrentFY: fy, BaselineFY: fy - 1}
	for _, d := range series {
		dfy, err := FiscalYearOf(d.Date, startMonth)
		if err != nil {
			return Split{}, err
		}
		switch dfy {
		case split.CurrentFY:
			split.Current = append(split.Current, d)
		case split.BaselineFY:
			split.Baseline = append(split.Baseline, d)
		}
	}
	return split, nil
}
