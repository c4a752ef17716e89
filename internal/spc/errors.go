package spc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate is returned when a date is missing or unusable.
	ErrInvalidDate = errors.New("invalid date")
	// ErrEmptySeries is returned when a range cannot be inferred from an empty series.
	ErrEmptySeries = errors.New("empty series")
	// ErrEmptyBaseline is returned when no baseline days are available to estimate limits.
	ErrEmptyBaseline = errors.New("baseline period is empty")
	// ErrInvalidRange is returned when a fill range starts after it ends.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidCount is returned when a daily count fails record validation.
	ErrInvalidCount = errors.New("invalid daily count")
	// ErrDuplicateDate is returned when a series holds the same day twice.
	ErrDuplicateDate = errors.New("duplicate date in series")
	// ErrInvalidStartMonth is returned for a fiscal start month outside 1-12.
	ErrInvalidStartMonth = errors.New("invalid fiscal year start month")
)

// DateError wraps a date-related failure with the offending value.
type DateError struct {
	Op    string
	Value string
	Err   error
}

// Error implements the error interface
func (e *DateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *DateError) Unwrap() error {
	return e.Err
}
