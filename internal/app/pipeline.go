package app

import (
	"fmt"
	"io"
	"log/slog"

	"spccli/internal/alerts"
	"spccli/internal/config"
	"spccli/internal/exporter"
	"spccli/internal/extract"
	"spccli/internal/infrastructure"
	"spccli/internal/operations"
	"spccli/internal/spc"
	"spccli/pkg/contracts"
)

// Pipeline holds the step manager and the collaborators it was built from
type Pipeline struct {
	Manager    *operations.Manager
	Extractor  extract.Extractor
	Exporter   *exporter.Exporter
	Dispatcher *alerts.Dispatcher
	Tracer     *operations.OperationTracer
}

// NewPipeline builds the extractor, exporter and alert dispatcher described
// by cfg and registers the pipeline steps on a new manager. providers may be
// nil, in which case spans and metrics are no-ops.
func NewPipeline(cfg *config.Config, paths *config.Paths, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	extractor, err := extract.New(cfg.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	dispatcher, err := alerts.FromConfig(cfg.Alerts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert dispatcher: %w", err)
	}

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	exp := exporter.New(paths, logger)
	registry := operations.NewRegistry()
	if err := operations.RegisterPipeline(registry, operations.Dependencies{
		Extractor:       extractor,
		Exporter:        exp,
		Dispatcher:      dispatcher,
		Metrics:         tracer.Metrics(),
		Logger:          logger,
		IncludeWarnings: cfg.Alerts.IncludeWarnings,
	}); err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("failed to register pipeline steps: %w", err)
	}

	logger.Debug("Pipeline assembled",
		slog.String("source", extractor.Name()),
		slog.Any("steps", registry.ListIDs()),
		slog.Any("alert_channels", dispatcher.Channels()))

	return &Pipeline{
		Manager:    operations.NewManager(registry, operations.NewConfig(), tracer, logger),
		Extractor:  extractor,
		Exporter:   exp,
		Dispatcher: dispatcher,
		Tracer:     tracer,
	}, nil
}

// Close releases the alert publishers
func (p *Pipeline) Close() error {
	if p == nil || p.Dispatcher == nil {
		return nil
	}
	return p.Dispatcher.Close()
}

// SPCOptions converts the analysis configuration into core options
func SPCOptions(cfg config.SPCConfig) spc.Options {
	return spc.Options{
		FYStartMonth:       cfg.Month(),
		CurrentFY:          cfg.CurrentFYOverride(),
		FillFullFiscalYear: cfg.FillFullFiscalYear,
	}
}

// OTelConfig converts the telemetry configuration. traceWriter receives
// spans when the exporter is "file".
func OTelConfig(cfg config.TelemetryConfig, traceWriter io.Writer) *infrastructure.OTelConfig {
	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceVersion = contracts.Version
	otelCfg.TraceExporter = cfg.TraceExporter
	otelCfg.TraceWriter = traceWriter
	otelCfg.EnableMetrics = cfg.EnableMetrics
	otelCfg.SampleRatio = cfg.SampleRatio
	if cfg.TraceExporter == "file" && traceWriter == nil {
		otelCfg.TraceExporter = "none"
	}
	return otelCfg
}
