package domain

import (
	"time"
)

// RunReport is the persisted outcome of one pipeline run.
type RunReport struct {
	RunID          string           `json:"run_id"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Source         string           `json:"source"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
	CurrentFY      int              `json:"current_fy"`
	BaselineFY     int              `json:"baseline_fy"`
	Limits         ControlLimits    `json:"limits"`
	Summary        []StatusCount    `json:"summary"`
	Flagged        []FlaggedDay     `json:"flagged"`
	Validation     ValidationReport `json:"validation"`
	InvalidDates   int              `json:"invalid_dates"`
	Outputs        []string         `json:"outputs,omitempty"`
}

// Alerts returns the flagged days with a warning or breach status.
func (r RunReport) Alerts() []FlaggedDay {
	var alerts []FlaggedDay
	for _, d := range r.Flagged {
		if d.Status.IsAlert() {
			alerts = append(alerts, d)
		}
	}
	return alerts
}
