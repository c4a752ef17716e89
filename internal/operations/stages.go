package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spccli/internal/alerts"
	"spccli/internal/dataprocessing"
	apperrors "spccli/internal/errors"
	"spccli/internal/exporter"
	"spccli/internal/extract"
	"spccli/internal/infrastructure"
	"spccli/internal/spc"
	"spccli/pkg/contracts/domain"
)

// Dependencies are the collaborators the pipeline steps run against
type Dependencies struct {
	Extractor  extract.Extractor
	Exporter   *exporter.Exporter
	Dispatcher *alerts.Dispatcher
	Metrics    *infrastructure.PipelineMetrics
	Logger     *slog.Logger

	// IncludeWarnings publishes 2 SD warnings as well as 3 SD breaches.
	IncludeWarnings bool
}

// RegisterPipeline registers the pipeline steps in execution order. The
// alerts step is registered only when the dispatcher has a channel.
func RegisterPipeline(registry *Registry, deps Dependencies) error {
	if deps.Extractor == nil {
		return fmt.Errorf("pipeline requires an extractor")
	}
	if deps.Exporter == nil {
		return fmt.Errorf("pipeline requires an exporter")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	steps := []Step{
		NewExtractStep(deps.Extractor, deps.Logger),
		NewStandardiseStep(deps.Metrics, deps.Logger),
		NewValidateStep(deps.Logger),
		NewSnapshotStep(deps.Exporter),
		NewSPCStep(deps.Metrics, deps.Logger),
		NewReportStep(deps.Exporter, deps.Logger),
	}
	if deps.Dispatcher.Enabled() {
		steps = append(steps, NewAlertsStep(deps.Dispatcher, deps.IncludeWarnings, deps.Metrics, deps.Logger))
	}

	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// ExtractStep reads the raw event table from the configured source
type ExtractStep struct {
	BaseStage
	extractor extract.Extractor
	logger    *slog.Logger
}

// NewExtractStep creates the extraction step
func NewExtractStep(extractor extract.Extractor, logger *slog.Logger) *ExtractStep {
	return &ExtractStep{
		BaseStage: NewBaseStage(StepIDExtract, StepNameExtract),
		extractor: extractor,
		logger:    logger,
	}
}

// Execute runs the extractor. Network failures are retryable.
func (s *ExtractStep) Execute(ctx context.Context, state *OperationState) error {
	res := s.extractor.Extract(ctx)
	state.Extraction = res
	if res.Err != nil {
		return NewExecutionError(s.ID(), res.Err, apperrors.TypeOf(res.Err) == apperrors.ErrTypeNetwork)
	}

	attrs := []any{
		slog.String("source", res.Source),
		slog.Int("rows", res.Table.Len()),
	}
	if res.FallbackReason != "" {
		attrs = append(attrs, slog.String("fallback_reason", res.FallbackReason))
	}
	s.logger.InfoContext(ctx, "extracted data", attrs...)
	state.Note(s.ID(), fmt.Sprintf("%d rows from %s", res.Table.Len(), res.Source))
	return nil
}

// StandardiseStep maps the raw table onto the canonical event columns
type StandardiseStep struct {
	BaseStage
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewStandardiseStep creates the standardisation step
func NewStandardiseStep(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *StandardiseStep {
	return &StandardiseStep{
		BaseStage: NewBaseStage(StepIDStandardise, StepNameStandardise),
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate requires a successful extraction
func (s *StandardiseStep) Validate(state *OperationState) error {
	if state.Extraction.Source == "" || state.Extraction.Err != nil {
		return fmt.Errorf("no extracted table available")
	}
	return nil
}

// Execute standardises the extracted table
func (s *StandardiseStep) Execute(ctx context.Context, state *OperationState) error {
	table, err := dataprocessing.Standardise(state.Extraction.Table)
	if err != nil {
		return NewExecutionError(s.ID(), apperrors.NewParsingError("failed to standardise events", err), false)
	}
	state.Events = &table

	invalid := 0
	for _, r := range table.Records {
		if !r.HasDate() {
			invalid++
		}
	}
	if s.metrics != nil {
		s.metrics.RecordExtraction(ctx, state.Extraction.Source, len(table.Records), invalid)
	}

	s.logger.DebugContext(ctx, "standardised events",
		slog.Int("records", len(table.Records)),
		slog.Int("invalid_dates", invalid),
		slog.Any("columns", table.Columns))
	state.Note(s.ID(), fmt.Sprintf("%d records, %d without a usable date", len(table.Records), invalid))
	return nil
}

// ValidateStep computes the data-quality summary
type ValidateStep struct {
	BaseStage
	logger *slog.Logger
}

// NewValidateStep creates the validation step
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	return &ValidateStep{
		BaseStage: NewBaseStage(StepIDValidate, StepNameValidate),
		logger:    logger,
	}
}

// Validate requires a standardised table
func (s *ValidateStep) Validate(state *OperationState) error {
	if state.Events == nil {
		return fmt.Errorf("no standardised events available")
	}
	return nil
}

// Execute validates the events. Quality issues are reported, not fatal.
func (s *ValidateStep) Execute(ctx context.Context, state *OperationState) error {
	report := dataprocessing.ValidateEvents(*state.Events)
	state.Validation = &report

	s.logger.LogAttrs(ctx, slog.LevelInfo, "validation summary", dataprocessing.LogAttrs(report)...)
	state.Note(s.ID(), fmt.Sprintf("%d rows, %d issues", report.RowCount, report.Issues()))
	return nil
}

// SnapshotStep persists the raw table, the processed events and the
// validation summary before analysis
type SnapshotStep struct {
	BaseStage
	exporter *exporter.Exporter
}

// NewSnapshotStep creates the snapshot step
func NewSnapshotStep(exp *exporter.Exporter) *SnapshotStep {
	return &SnapshotStep{
		BaseStage: NewBaseStage(StepIDSnapshot, StepNameSnapshot),
		exporter:  exp,
	}
}

// Validate requires validated events
func (s *SnapshotStep) Validate(state *OperationState) error {
	if state.Events == nil || state.Validation == nil {
		return fmt.Errorf("no validated events available")
	}
	return nil
}

// Execute writes the snapshot files
func (s *SnapshotStep) Execute(ctx context.Context, state *OperationState) error {
	raw := state.Extraction.Table
	outputs, err := s.exporter.Export(ctx, exporter.Bundle{
		Raw:        &raw,
		Events:     state.Events,
		Validation: state.Validation,
	})
	state.AddOutputs(outputs...)
	if err != nil {
		return NewExecutionError(s.ID(), apperrors.NewStorageError("failed to write snapshots", err), false)
	}
	state.Note(s.ID(), fmt.Sprintf("%d files written", len(outputs)))
	return nil
}

// SPCStep estimates control limits and classifies the current fiscal year
type SPCStep struct {
	BaseStage
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewSPCStep creates the analysis step
func NewSPCStep(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SPCStep {
	return &SPCStep{
		BaseStage: NewBaseStage(StepIDSPC, StepNameSPC),
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate requires standardised events
func (s *SPCStep) Validate(state *OperationState) error {
	if state.Events == nil {
		return fmt.Errorf("no standardised events available")
	}
	return nil
}

// Execute runs the analysis. Analysis failures are deterministic and never
// retried.
func (s *SPCStep) Execute(ctx context.Context, state *OperationState) error {
	analysis, err := spc.Analyse(state.Events.Records, state.Options)
	if err != nil {
		if errors.Is(err, spc.ErrEmptyBaseline) {
			s.logger.ErrorContext(ctx, "baseline fiscal year has no data",
				slog.String("baseline_fy", fmt.Sprintf("FY%d", analysis.BaselineFY)),
				slog.String("current_fy", fmt.Sprintf("FY%d", analysis.CurrentFY)))
		}
		return NewExecutionError(s.ID(), apperrors.NewAnalysisError("SPC analysis failed", err), false)
	}
	state.Analysis = &analysis

	s.logger.InfoContext(ctx, fmt.Sprintf("Baseline FY: FY%d | Current FY: FY%d", analysis.BaselineFY, analysis.CurrentFY))
	s.logger.InfoContext(ctx, fmt.Sprintf("SPC limits from baseline FY%d", analysis.BaselineFY),
		slog.Float64("mean", analysis.Limits.Mean),
		slog.Float64("std", analysis.Limits.Std),
		slog.Float64("uwl_2sd", analysis.Limits.UpperWarning),
		slog.Float64("ucl_3sd", analysis.Limits.UpperControl),
		slog.Int("baseline_days", analysis.Limits.BaselineDays))
	if analysis.Aggregate.InvalidDates > 0 {
		s.logger.WarnContext(ctx, "events without a usable collection date were excluded",
			slog.Int("invalid_dates", analysis.Aggregate.InvalidDates))
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(ctx, analysis.Limits, analysis.Summary)
	}

	state.Note(s.ID(), fmt.Sprintf("FY%d against FY%d: %d breaches, %d warnings",
		analysis.CurrentFY, analysis.BaselineFY,
		analysis.Summary[domain.StatusBreach3SD], analysis.Summary[domain.StatusWarning2SD]))
	return nil
}

// ReportStep writes the flagged series, the breach summary, the workbook and
// the run report
type ReportStep struct {
	BaseStage
	exporter *exporter.Exporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportStep creates the report step
func NewReportStep(exp *exporter.Exporter, logger *slog.Logger) *ReportStep {
	return &ReportStep{
		BaseStage: NewBaseStage(StepIDReport, StepNameReport),
		exporter:  exp,
		logger:    logger,
		now:       time.Now,
	}
}

// Validate requires a finished analysis
func (s *ReportStep) Validate(state *OperationState) error {
	if state.Analysis == nil {
		return fmt.Errorf("no analysis available")
	}
	return nil
}

// Execute builds and persists the run report
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	report := BuildRunReport(state, s.now().UTC())

	outputs, err := s.exporter.Export(ctx, exporter.Bundle{Report: &report})
	state.AddOutputs(outputs...)
	if err != nil {
		return NewExecutionError(s.ID(), apperrors.NewStorageError("failed to write report files", err), false)
	}

	report.Outputs = state.GetOutputs()
	path, err := s.exporter.WriteRunReport(report)
	if err != nil {
		return NewExecutionError(s.ID(), apperrors.NewStorageError("failed to write run report", err), false)
	}
	state.AddOutputs(path)
	state.Report = &report

	state.Note(s.ID(), fmt.Sprintf("%d alert days", len(report.Alerts())))
	return nil
}

// BuildRunReport assembles the run report from a state holding an analysis
func BuildRunReport(state *OperationState, generatedAt time.Time) domain.RunReport {
	report := domain.RunReport{
		RunID:          state.ID,
		GeneratedAt:    generatedAt,
		Source:         state.Extraction.Source,
		FallbackReason: state.Extraction.FallbackReason,
	}
	if state.Validation != nil {
		report.Validation = *state.Validation
	}
	if a := state.Analysis; a != nil {
		report.CurrentFY = a.CurrentFY
		report.BaselineFY = a.BaselineFY
		report.Limits = a.Limits
		report.Summary = a.Summary.Rows()
		report.Flagged = a.Flagged
		report.InvalidDates = a.Aggregate.InvalidDates
	}
	return report
}

// AlertsStep publishes breach and warning days to the configured channels
type AlertsStep struct {
	BaseStage
	dispatcher      *alerts.Dispatcher
	includeWarnings bool
	metrics         *infrastructure.PipelineMetrics
	logger          *slog.Logger
}

// NewAlertsStep creates the alert publishing step
func NewAlertsStep(dispatcher *alerts.Dispatcher, includeWarnings bool, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *AlertsStep {
	return &AlertsStep{
		BaseStage:       NewBaseStage(StepIDAlerts, StepNameAlerts),
		dispatcher:      dispatcher,
		includeWarnings: includeWarnings,
		metrics:         metrics,
		logger:          logger,
	}
}

// Validate requires a run report
func (s *AlertsStep) Validate(state *OperationState) error {
	if state.Report == nil {
		return fmt.Errorf("no run report available")
	}
	return nil
}

// Execute publishes alerts. Delivery failures are recorded per channel and
// do not fail the run.
func (s *AlertsStep) Execute(ctx context.Context, state *OperationState) error {
	pending := alerts.FromReport(*state.Report, s.includeWarnings)
	if len(pending) == 0 {
		state.Note(s.ID(), "no alerts to publish")
		return nil
	}

	deliveries := s.dispatcher.Dispatch(ctx, pending)
	state.Deliveries = deliveries

	failed := 0
	for _, d := range deliveries {
		if s.metrics != nil {
			s.metrics.RecordAlert(ctx, d.Channel, d.Err == nil)
		}
		if d.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.WarnContext(ctx, "some alert deliveries failed",
			slog.Int("failed", failed),
			slog.Int("channels", len(deliveries)))
	}

	state.Note(s.ID(), fmt.Sprintf("%d alerts to %d channels, %d failed", len(pending), len(deliveries), failed))
	return nil
}
