package spc

import (
	"fmt"
	"time"

	"spccli/pkg/contracts/domain"
)

// DefaultFYStartMonth is the month a fiscal year starts in unless configured otherwise.
const DefaultFYStartMonth = time.April

// FiscalYearOf returns the fiscal year of date. A fiscal year is labelled by
// the calendar year in which it ends: with an April start, 2024-04-01 belongs
// to FY2025 and 2024-03-31 to FY2024.
func FiscalYearOf(date time.Time, startMonth time.Month) (int, error) {
	if date.IsZero() {
		return 0, &DateError{Op: "fiscal year", Err: ErrInvalidDate}
	}
	if err := checkStartMonth(startMonth); err != nil {
		return 0, err
	}
	if date.Month() >= startMonth {
		return date.Year() + 1, nil
	}
	return date.Year(), nil
}

// FiscalYearBounds returns the first and last calendar day of fiscal year fy.
func FiscalYearBounds(fy int, startMonth time.Month) (time.Time, time.Time, error) {
	if err := checkStartMonth(startMonth); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := domain.Date(fy-1, startMonth, 1)
	end := start.AddDate(1, 0, -1)
	return start, end, nil
}

func checkStartMonth(m time.Month) error {
	if m < time.January || m > time.December {
		return fmt.Errorf("%w: %d", ErrInvalidStartMonth, int(m))
	}
	return nil
}
