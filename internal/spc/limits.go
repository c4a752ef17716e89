package spc

import (
	"math"

	"spccli/pkg/contracts/domain"
)

// EstimateLimits computes control limits from baseline counts. The standard
// deviation is the sample deviation (divisor n-1) and is zero for a single day.
func EstimateLimits(baseline []domain.DailyCount) (domain.ControlLimits, error) {
	if len(baseline) == 0 {
		return domain.ControlLimits{}, ErrEmptyBaseline
	}

	sum := 0.0
	for _, d := range baseline {
		sum += float64(d.Count)
	}
	mean := sum / float64(len(baseline))
	std := sampleStdDev(baseline, mean)

	return domain.ControlLimits{
		Mean:         mean,
		Std:          std,
		UpperWarning: mean + 2*std,
		UpperControl: mean + 3*std,
		BaselineDays: len(baseline),
	}, nil
}

func sampleStdDev(days []domain.DailyCount, mean float64) float64 {
	if len(days) <= 1 {
		return 0
	}
	sumSquaredDiff := 0.0
	for _, d := range days {
		diff := float64(d.Count) - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(days)-1))
}
