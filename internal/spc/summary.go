package spc

import (
	"spccli/pkg/contracts/domain"
)

// Summarise counts flagged days per status. A day without a status is counted
// as StatusUndefined, so the counts always add up to len(flagged).
func Summarise(flagged []domain.FlaggedDay) domain.BreachSummary {
	summary := make(domain.BreachSummary)
	for _, d := range flagged {
		status := d.Status
		if status == "" {
			status = domain.StatusUndefined
		}
		summary[status]++
	}
	return summary
}
