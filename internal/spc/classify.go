package spc

import (
	"spccli/pkg/contracts/domain"
)

// ClassifyCount returns the status of a single value. The control limit is
// checked before the warning limit and both comparisons are inclusive.
func ClassifyCount(value float64, limits domain.ControlLimits) domain.Status {
	switch {
	case value >= limits.UpperControl:
		return domain.StatusBreach3SD
	case value >= limits.UpperWarning:
		return domain.StatusWarning2SD
	default:
		return domain.StatusWithinRange
	}
}

// Classify flags every day of current against limits.
func Classify(current []domain.DailyCount, limits domain.ControlLimits) []domain.FlaggedDay {
	flagged := make([]domain.FlaggedDay, 0, len(current))
	for _, d := range current {
		flagged = append(flagged, domain.FlaggedDay{
			DailyCount: d,
			Limits:     limits,
			Status:     ClassifyCount(float64(d.Count), limits),
		})
	}
	return flagged
}
