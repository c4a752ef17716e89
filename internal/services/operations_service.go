package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "spccli/internal/errors"
	"spccli/internal/infrastructure"
	"spccli/internal/operations"
	"spccli/internal/spc"
	api "spccli/pkg/contracts/api/v1"
	"spccli/pkg/contracts/domain"
)

// Executor runs the pipeline
type Executor interface {
	Execute(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error)
}

// PipelineService runs the SPC pipeline and keeps the latest run report.
// At most one run is in flight at a time.
type PipelineService struct {
	executor Executor
	options  spc.Options
	store    *DataService
	logger   *slog.Logger

	runMu sync.Mutex

	mu      sync.RWMutex
	latest  *domain.RunReport
	lastRun time.Time
	running bool
}

// NewPipelineService creates a pipeline service. store may be nil, in which
// case Latest only knows about runs made by this process.
func NewPipelineService(executor Executor, options spc.Options, store *DataService, logger *slog.Logger) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		executor: executor,
		options:  options,
		store:    store,
		logger:   logger,
	}
}

// Run executes the pipeline. It returns ErrRunInProgress when another run
// holds the service. A failed run still returns its response.
func (ps *PipelineService) Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
	if !ps.runMu.TryLock() {
		return nil, apperrors.ErrRunInProgress
	}
	defer ps.runMu.Unlock()

	ps.setRunning(true)
	defer ps.setRunning(false)

	opts := ps.options
	if req.CurrentFY != nil {
		fy := *req.CurrentFY
		opts.CurrentFY = &fy
	}
	mode := req.Mode
	if mode == "" {
		mode = operations.ModeFull
	}

	runID := uuid.NewString()
	ctx = infrastructure.WithTraceID(ctx, runID)
	ps.logger.InfoContext(ctx, "Starting pipeline run.",
		slog.String("run_id", runID),
		slog.String("mode", mode))

	resp, err := ps.executor.Execute(ctx, operations.OperationRequest{
		ID:      runID,
		Mode:    mode,
		Options: opts,
	})
	if resp == nil {
		return nil, err
	}

	out := toRunResponse(resp)
	if resp.State != nil && resp.State.Report != nil {
		ps.setLatest(resp.State.Report)
	}

	if err != nil {
		ps.logger.ErrorContext(ctx, "Pipeline run failed.",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return out, err
	}
	ps.logger.InfoContext(ctx, "Pipeline run completed successfully.",
		slog.String("run_id", runID),
		slog.Duration("duration", resp.Duration))
	return out, nil
}

// Latest returns the most recent run report: the last one produced by this
// process, else the newest one persisted on disk.
func (ps *PipelineService) Latest(ctx context.Context) (*domain.RunReport, error) {
	ps.mu.RLock()
	latest := ps.latest
	ps.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if ps.store == nil {
		return nil, apperrors.ErrReportNotFound
	}
	report, err := ps.store.LatestRunReport(ctx)
	if err != nil {
		return nil, err
	}
	ps.setLatest(report)
	return report, nil
}

// Status reports whether a run is in flight and when the last report was
// produced
func (ps *PipelineService) Status() (running bool, lastRun time.Time) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.running, ps.lastRun
}

func (ps *PipelineService) setRunning(v bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.running = v
}

func (ps *PipelineService) setLatest(report *domain.RunReport) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.latest = report
	ps.lastRun = report.GeneratedAt
}

func toRunResponse(resp *operations.OperationResponse) *api.RunResponse {
	out := &api.RunResponse{
		RunID:      resp.ID,
		Status:     string(resp.Status),
		DurationMS: resp.Duration.Milliseconds(),
		Error:      resp.Error,
		Steps:      make([]api.StepResult, 0, len(resp.Steps)),
	}
	for _, s := range resp.Steps {
		out.Steps = append(out.Steps, api.StepResult{
			ID:         s.ID,
			Name:       s.Name,
			Status:     string(s.Status),
			DurationMS: s.Duration.Milliseconds(),
			Message:    s.Message,
			Error:      s.Error,
		})
	}
	if resp.State != nil {
		out.Outputs = resp.State.GetOutputs()
		out.Report = resp.State.Report
	}
	return out
}
