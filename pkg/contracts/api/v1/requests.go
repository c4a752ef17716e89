// Package api contains the HTTP contract of the SPC service.
// Version v1 represents the current stable API version.
package api

import (
	"time"

	"spccli/pkg/contracts/domain"
)

// RunRequest triggers a pipeline run
type RunRequest struct {
	// Mode is "full" (default) or "validate".
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=full validate"`
	// CurrentFY overrides the fiscal year inferred from the data.
	CurrentFY *int `json:"current_fy,omitempty" validate:"omitempty,min=1900,max=9999"`
}

// StepResult describes one pipeline step of a run
type StepResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunResponse is the outcome of a pipeline run
type RunResponse struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	DurationMS int64             `json:"duration_ms"`
	Steps      []StepResult      `json:"steps"`
	Outputs    []string          `json:"outputs,omitempty"`
	Report     *domain.RunReport `json:"report,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// OutputFile describes a file written by a run
type OutputFile struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// FilesResponse lists the files produced by runs
type FilesResponse struct {
	Files []OutputFile `json:"files"`
	Total int          `json:"total"`
}
