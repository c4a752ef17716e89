package operations

import (
	"time"

	"spccli/internal/spc"
)

// Step IDs, in pipeline order
const (
	StepIDExtract     = "extract"
	StepIDStandardise = "standardise"
	StepIDValidate    = "validate"
	StepIDSnapshot    = "snapshot"
	StepIDSPC         = "spc"
	StepIDReport      = "report"
	StepIDAlerts      = "alerts"
)

// Step names
const (
	StepNameExtract     = "Data Extraction"
	StepNameStandardise = "Standardisation"
	StepNameValidate    = "Data Validation"
	StepNameSnapshot    = "Snapshot Export"
	StepNameSPC         = "SPC Analysis"
	StepNameReport      = "Report Generation"
	StepNameAlerts      = "Alert Publishing"
)

// Run modes
const (
	// ModeFull runs every registered step.
	ModeFull = "full"
	// ModeValidate stops after the snapshot step.
	ModeValidate = "validate"
)

// validateModeSteps are the steps run in ModeValidate
var validateModeSteps = []string{StepIDExtract, StepIDStandardise, StepIDValidate, StepIDSnapshot}

// OperationStatus represents the status of a pipeline run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationRequest describes one pipeline run
type OperationRequest struct {
	ID      string
	Mode    string
	Options spc.Options
}

// OperationResponse is the outcome of a pipeline run
type OperationResponse struct {
	ID       string          `json:"id"`
	Status   OperationStatus `json:"status"`
	Duration time.Duration   `json:"duration"`
	Steps    []StepSummary   `json:"steps"`
	Error    string          `json:"error,omitempty"`

	// State holds the step outputs of the run.
	State *OperationState `json:"-"`
}

// StepSummary is a point-in-time view of a step
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// RetryConfig contains retry configuration
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig creates a retry configuration with defaults
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Default timeouts
const (
	DefaultStepTimeout    = 5 * time.Minute
	DefaultExtractTimeout = 10 * time.Minute
)
