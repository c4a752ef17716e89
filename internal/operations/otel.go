package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"spccli/internal/infrastructure"
)

const (
	TracerName = "spccli.pipeline"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer over the given providers. Nil
// providers give a tracer whose spans and instruments are no-ops.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return newNoopTracer(), nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}

	return &OperationTracer{
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

func newNoopTracer() *OperationTracer {
	// noop instruments never fail to create
	metrics, _ := infrastructure.CreatePipelineMetrics(noop.NewMeterProvider().Meter(TracerName))
	return &OperationTracer{
		tracer:  tracenoop.NewTracerProvider().Tracer(TracerName),
		metrics: metrics,
	}
}

// Metrics returns the instruments steps record into
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, req OperationRequest) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.run.%s", req.Mode),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("operation.mode", req.Mode),
			attribute.Int("spc.fy_start_month", int(req.Options.FYStartMonth)),
			attribute.Bool("spc.fill_full_fiscal_year", req.Options.FillFullFiscalYear),
		),
	)
}

// TraceStageExecution creates a span for a single step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordOperationCompletion records the run outcome on its span and counter
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, duration time.Duration, status OperationStatus) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordRun(ctx, string(status))

	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "run completed")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("run finished with status: %s", status))
	}
}

// RecordStageCompletion records step completion on its span and histogram
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, attempts int, success bool) {
	span.SetAttributes(
		attribute.Bool("step.success", success),
		attribute.Int("step.attempts", attempts),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordStep(ctx, stepID, duration, success)

	if success {
		span.SetStatus(codes.Ok, "step completed")
	}
}

// RecordStageError records a step error on the current span
func (pt *OperationTracer) RecordStageError(ctx context.Context, stepID string, err error) {
	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("step.id", stepID),
			attribute.String("error.type", string(GetErrorType(err))),
		),
	)
}
