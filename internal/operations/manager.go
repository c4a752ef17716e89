package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates pipeline runs
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger

	// Active runs
	mu         sync.RWMutex
	operations map[string]*activeOperation
}

type activeOperation struct {
	state  *OperationState
	cancel context.CancelFunc
}

// NewManager creates a new pipeline manager. Nil arguments fall back to
// an empty registry, the default config, a no-op tracer and slog.Default.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry:   registry,
		config:     config,
		tracer:     tracer,
		logger:     logger,
		operations: make(map[string]*activeOperation),
	}
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the pipeline for req. The response carries the step states
// and the populated OperationState even when a step fails.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Mode == "" {
		req.Mode = ModeFull
	}

	steps, err := m.stepsFor(req.Mode)
	if err != nil {
		return nil, err
	}

	state := NewOperationState(req.ID)
	state.Options = req.Options
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req)
	defer span.End()

	m.logOperationStart(ctx, req.ID, req, len(steps))
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
		m.logOperationError(ctx, req.ID, err)
	default:
		state.Fail(err)
		m.logOperationError(ctx, req.ID, err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), state.GetStatus())
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.GetStatus())

	return m.createResponse(state, steps), err
}

// stepsFor returns the registered steps a mode runs
func (m *Manager) stepsFor(mode string) ([]Step, error) {
	var steps []Step
	switch mode {
	case ModeFull:
		steps = m.registry.List()
	case ModeValidate:
		steps = m.registry.Select(validateModeSteps)
	default:
		return nil, fmt.Errorf("unknown run mode %q", mode)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no steps registered for mode %q", mode)
	}
	return steps, nil
}

// executeSequential runs steps in order. The first failure skips every
// remaining step.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(ctx, state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage runs a single step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	ctx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	started := time.Now()
	attempts, err := m.runStage(ctx, state, step, stepState)
	m.tracer.RecordStageCompletion(ctx, span, step.ID(), time.Since(started), attempts, err == nil)
	if err != nil {
		m.tracer.RecordStageError(ctx, step.ID(), err)
	}
	return err
}

// runStage validates and executes a step, retrying retryable failures
func (m *Manager) runStage(ctx context.Context, state *OperationState, step Step, stepState *StepState) (int, error) {
	if err := step.Validate(state); err != nil {
		vErr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(vErr)
		return 0, vErr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retry := m.config.RetryConfig
	maxAttempts := max(retry.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		stepState.Start()
		m.logStageStart(ctx, state.ID, step.ID(), attempt)

		started := time.Now()
		err := step.Execute(stageCtx, state)
		if err == nil {
			stepState.Complete()
			m.logStageComplete(ctx, state.ID, step.ID(), time.Since(started))
			return attempt, nil
		}

		if ctxErr := contextError(ctx, stageCtx, step.ID(), timeout); ctxErr != nil {
			stepState.Fail(ctxErr)
			return attempt, ctxErr
		}

		if !IsRetryable(err) || attempt >= maxAttempts {
			wrapped := WrapError(err, step.ID())
			stepState.Fail(wrapped)
			return attempt, wrapped
		}

		delay := calculateRetryDelay(attempt, retry)
		m.logger.WarnContext(ctx, "stage_retry",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-stageCtx.Done():
			ctxErr := contextError(ctx, stageCtx, step.ID(), timeout)
			stepState.Fail(ctxErr)
			return attempt, ctxErr
		}
	}
}

// contextError reports why a step context ended, or nil if it has not
func contextError(parent, stageCtx context.Context, stepID string, timeout time.Duration) *OperationError {
	if err := parent.Err(); err != nil {
		return NewCancellationError(stepID, err)
	}
	if err := stageCtx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewTimeoutError(stepID, timeout.String(), err)
		}
		return NewCancellationError(stepID, err)
	}
	return nil
}

// skipRemaining marks the given steps as skipped
func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if st := state.GetStage(step.ID()); st != nil && st.GetStatus() == StepStatusPending {
			st.Skip(reason)
			m.logStageSkipped(ctx, state.ID, step.ID(), reason)
		}
	}
}

// calculateRetryDelay calculates the delay before the next attempt
func calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

// createResponse creates a run response from state
func (m *Manager) createResponse(state *OperationState, steps []Step) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		State:    state,
	}
	for _, step := range steps {
		if st := state.GetStage(step.ID()); st != nil {
			resp.Steps = append(resp.Steps, st.Summary())
		}
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetOperation retrieves the state of a running operation
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return op.state, nil
}

// ListOperations returns the IDs of all active operations
func (m *Manager) ListOperations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.operations))
	for id := range m.operations {
		ids = append(ids, id)
	}
	return ids
}

// CancelOperation cancels a running operation. The run stops at the next
// step boundary or when the current step honours its context.
func (m *Manager) CancelOperation(id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return fmt.Errorf("operation %s not found", id)
	}
	op.cancel()
	return nil
}

// storeOperation stores an operation state
func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = &activeOperation{state: state, cancel: cancel}
}

// removeOperation removes an operation state
func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}
