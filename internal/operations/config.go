package operations

import (
	"time"
)

// Config represents the pipeline execution configuration
type Config struct {
	// Step-specific timeouts
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`

	// Retry configuration for steps
	RetryConfig RetryConfig `json:"retry_config"`
}

// NewConfig returns the default pipeline configuration
func NewConfig() *Config {
	return &Config{
		StageTimeouts: map[string]time.Duration{
			StepIDExtract: DefaultExtractTimeout,
		},
		RetryConfig: NewRetryConfig(),
	}
}

// GetStageTimeout returns the timeout for a specific Step
func (c *Config) GetStageTimeout(stageID string) time.Duration {
	if timeout, ok := c.StageTimeouts[stageID]; ok && timeout > 0 {
		return timeout
	}
	return DefaultStepTimeout
}

// SetStageTimeout sets the timeout for a specific Step
func (c *Config) SetStageTimeout(stageID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[stageID] = timeout
}
