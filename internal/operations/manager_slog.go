package operations

import (
	"context"
	"log/slog"
	"time"
)

// logOperationStart logs the start of a pipeline run
func (m *Manager) logOperationStart(ctx context.Context, operationID string, req OperationRequest, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.String("mode", req.Mode),
		slog.Int("step_count", steps))
}

// logOperationComplete logs the completion of a pipeline run
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status OperationStatus) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

// logOperationError logs a run failure
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error", errString(err)))
}

// logStageStart logs the start of a step
func (m *Manager) logStageStart(ctx context.Context, operationID, stepID string, attempt int) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Int("attempt", attempt))
}

// logStageComplete logs the completion of a step
func (m *Manager) logStageComplete(ctx context.Context, operationID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

// logStageError logs a step failure
func (m *Manager) logStageError(ctx context.Context, operationID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errString(err)))
}

// logStageSkipped logs a step that did not run
func (m *Manager) logStageSkipped(ctx context.Context, operationID, stepID, reason string) {
	m.logger.WarnContext(ctx, "stage_skipped",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("reason", reason))
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
