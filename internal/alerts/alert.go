package alerts

import (
	"context"
	"fmt"
	"time"

	"spccli/pkg/contracts/domain"
)

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert describes one flagged day.
type Alert struct {
	RunID      string        `json:"run_id"`
	Date       string        `json:"date"`
	Count      int           `json:"daily_cases"`
	Status     domain.Status `json:"status"`
	Severity   string        `json:"severity"`
	Mean       float64       `json:"mean"`
	UWL        float64       `json:"uwl_2sd"`
	UCL        float64       `json:"ucl_3sd"`
	CurrentFY  int           `json:"current_fy"`
	BaselineFY int           `json:"baseline_fy"`
	Message    string        `json:"message"`
	RaisedAt   time.Time     `json:"raised_at"`
}

// Publisher delivers alerts to one channel.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, alerts []Alert) error
	Close() error
}

// FromReport builds an alert for every breach day of report, and for every
// warning day when includeWarnings is set.
func FromReport(report domain.RunReport, includeWarnings bool) []Alert {
	var alerts []Alert
	for _, d := range report.Flagged {
		var severity string
		switch d.Status {
		case domain.StatusBreach3SD:
			severity = SeverityCritical
		case domain.StatusWarning2SD:
			if !includeWarnings {
				continue
			}
			severity = SeverityWarning
		default:
			continue
		}

		alerts = append(alerts, Alert{
			RunID:      report.RunID,
			Date:       domain.FormatDay(d.Date),
			Count:      d.Count,
			Status:     d.Status,
			Severity:   severity,
			Mean:       d.Limits.Mean,
			UWL:        d.Limits.UpperWarning,
			UCL:        d.Limits.UpperControl,
			CurrentFY:  report.CurrentFY,
			BaselineFY: report.BaselineFY,
			Message: fmt.Sprintf("%s on %s: %d cases (UWL %.2f, UCL %.2f, baseline FY%d)",
				d.Status, domain.FormatDay(d.Date), d.Count,
				d.Limits.UpperWarning, d.Limits.UpperControl, report.BaselineFY),
			RaisedAt: report.GeneratedAt,
		})
	}
	return alerts
}
