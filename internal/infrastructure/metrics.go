package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"spccli/pkg/contracts/domain"
)

// PipelineMetrics holds the instruments recorded by a pipeline run
type PipelineMetrics struct {
	RunsTotal        metric.Int64Counter
	RecordsExtracted metric.Int64Counter
	InvalidDates     metric.Int64Counter
	DaysClassified   metric.Int64Counter
	AlertsPublished  metric.Int64Counter
	StepDuration     metric.Float64Histogram
	ControlLimit     metric.Float64Gauge
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"spc_runs_total",
		metric.WithDescription("Total number of pipeline runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	recordsExtracted, err := meter.Int64Counter(
		"spc_records_extracted_total",
		metric.WithDescription("Total number of infection events extracted"),
	)
	if err != nil {
		return nil, err
	}

	invalidDates, err := meter.Int64Counter(
		"spc_invalid_dates_total",
		metric.WithDescription("Events excluded from aggregation because of a missing or unparseable date"),
	)
	if err != nil {
		return nil, err
	}

	daysClassified, err := meter.Int64Counter(
		"spc_days_classified_total",
		metric.WithDescription("Current period days classified, by SPC status"),
	)
	if err != nil {
		return nil, err
	}

	alertsPublished, err := meter.Int64Counter(
		"spc_alerts_published_total",
		metric.WithDescription("Alerts delivered per channel and outcome"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"spc_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	controlLimit, err := meter.Float64Gauge(
		"spc_control_limit",
		metric.WithDescription("Baseline statistics of the latest run"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:        runsTotal,
		RecordsExtracted: recordsExtracted,
		InvalidDates:     invalidDates,
		DaysClassified:   daysClassified,
		AlertsPublished:  alertsPublished,
		StepDuration:     stepDuration,
		ControlLimit:     controlLimit,
	}, nil
}

// RecordRun counts a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, status string) {
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStep records the duration of one pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.Bool("success", success),
	))
}

// RecordExtraction counts extracted events and excluded dates
func (m *PipelineMetrics) RecordExtraction(ctx context.Context, source string, records, invalidDates int) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.RecordsExtracted.Add(ctx, int64(records), attrs)
	m.InvalidDates.Add(ctx, int64(invalidDates), attrs)
}

// RecordAnalysis records the limits and the status counts of a run
func (m *PipelineMetrics) RecordAnalysis(ctx context.Context, limits domain.ControlLimits, summary domain.BreachSummary) {
	for name, value := range map[string]float64{
		"mean":    limits.Mean,
		"std":     limits.Std,
		"uwl_2sd": limits.UpperWarning,
		"ucl_3sd": limits.UpperControl,
	} {
		m.ControlLimit.Record(ctx, value, metric.WithAttributes(attribute.String("limit", name)))
	}
	for _, row := range summary.Rows() {
		m.DaysClassified.Add(ctx, int64(row.Days), metric.WithAttributes(attribute.String("status", string(row.Status))))
	}
}

// RecordAlert counts one alert delivery attempt
func (m *PipelineMetrics) RecordAlert(ctx context.Context, channel string, success bool) {
	outcome := "delivered"
	if !success {
		outcome = "failed"
	}
	m.AlertsPublished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	))
}

// HTTPMetrics holds the instruments recorded by the HTTP server
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// CreateHTTPMetrics creates the HTTP server instruments
func CreateHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}
