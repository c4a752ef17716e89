package services

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"spccli/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	pipeline  *PipelineService
	source    string
	channels  []string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. source names the configured
// event source and channels the alert publishers.
func NewHealthService(pipeline *PipelineService, source string, channels []string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		pipeline:  pipeline,
		source:    source,
		channels:  channels,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{
			"pipeline": hs.checkPipelineHealth(),
			"source":   {Status: "configured", Message: hs.source},
			"alerts":   hs.checkAlertsHealth(),
		},
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status))
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkPipelineHealth() ServiceHealth {
	if hs.pipeline == nil {
		return ServiceHealth{Status: "unavailable"}
	}
	running, lastRun := hs.pipeline.Status()
	h := ServiceHealth{Status: "idle"}
	if running {
		h.Status = "running"
	}
	if !lastRun.IsZero() {
		h.Message = "last report generated at " + lastRun.UTC().Format(time.RFC3339)
	} else {
		h.Message = "no report yet"
	}
	return h
}

func (hs *HealthService) checkAlertsHealth() ServiceHealth {
	if len(hs.channels) == 0 {
		return ServiceHealth{Status: "disabled"}
	}
	return ServiceHealth{Status: "enabled", Message: strings.Join(hs.channels, ", ")}
}
