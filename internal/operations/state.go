package operations

import (
	"sync"
	"time"

	"spccli/internal/alerts"
	"spccli/internal/extract"
	"spccli/internal/spc"
	"spccli/pkg/contracts/domain"
)

// OperationState represents the complete state of a pipeline run.
//
// The data fields are written by the step that produces them and read by
// later steps. Steps run one at a time, so only the bookkeeping fields are
// guarded by the mutex.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatus
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	// Step states
	Steps map[string]*StepState

	// Run inputs
	Options spc.Options

	// Step outputs
	Extraction extract.Result
	Events     *domain.EventTable
	Validation *domain.ValidationReport
	Analysis   *spc.Analysis
	Report     *domain.RunReport
	Outputs    []string
	Deliveries []alerts.Delivery
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current operation status
func (p *OperationState) GetStatus() OperationStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage sets the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stageID] = state
}

// Note sets the message of a step, if the step belongs to this run
func (p *OperationState) Note(stageID, message string) {
	if st := p.GetStage(stageID); st != nil {
		st.SetMessage(message)
	}
}

// AddOutputs records files written by a step
func (p *OperationState) AddOutputs(paths ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Outputs = append(p.Outputs, paths...)
}

// GetOutputs returns a copy of the files written so far
func (p *OperationState) GetOutputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.Outputs...)
}

// Duration returns the total duration of the operation
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
