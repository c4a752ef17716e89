package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"spccli/internal/spc"
)

// Common error types following RFC 7807
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeInternal   = "/errors/internal"
	TypeTimeout    = "/errors/timeout"
)

// Domain-specific error types
const (
	TypeEmptyBaseline     = "/errors/spc/empty-baseline"
	TypeNoEvents          = "/errors/spc/no-events"
	TypeAnalysisFailed    = "/errors/spc/analysis-failed"
	TypeSourceUnavailable = "/errors/source/unavailable"
	TypeDataInvalid       = "/errors/data/invalid"
	TypeReportNotFound    = "/errors/report/not-found"
	TypeRunInProgress     = "/errors/run/in-progress"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	problem.Render(w, r)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	switch {
	case errors.Is(err, spc.ErrEmptyBaseline):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeEmptyBaseline,
			"Empty Baseline",
			err.Error(),
			path,
		)
	case errors.Is(err, spc.ErrEmptySeries):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeNoEvents,
			"No Events",
			err.Error(),
			path,
		)
	case errors.Is(err, spc.ErrInvalidCount):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataInvalid,
			"Invalid Event Data",
			err.Error(),
			path,
		)
	}

	switch TypeOf(err) {
	case ErrTypeExtraction, ErrTypeNetwork:
		return NewProblemDetails(
			http.StatusBadGateway,
			TypeSourceUnavailable,
			"Event Source Unavailable",
			err.Error(),
			path,
		)
	case ErrTypeValidation, ErrTypeParsing:
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataInvalid,
			"Invalid Event Data",
			err.Error(),
			path,
		)
	case ErrTypeAnalysis:
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeAnalysisFailed,
			"Analysis Failed",
			err.Error(),
			path,
		)
	case ErrTypeNotFound:
		return NewProblemDetails(
			http.StatusNotFound,
			TypeNotFound,
			"Resource Not Found",
			err.Error(),
			path,
		)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "REPORT_NOT_FOUND":
		problemType = TypeReportNotFound
	case "RUN_IN_PROGRESS":
		problemType = TypeRunInProgress
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	problem.Render(w, r)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	problem.Render(w, r)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	problem.Render(w, r)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
