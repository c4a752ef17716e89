package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/internal/spc"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"wrapped cancel", fmt.Errorf("extract: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"api error", ErrRunInProgress, http.StatusConflict, TypeRunInProgress},
		{"report not found", ErrReportNotFound, http.StatusNotFound, TypeReportNotFound},
		{"empty baseline", fmt.Errorf("no data for FY2023: %w", spc.ErrEmptyBaseline), http.StatusUnprocessableEntity, TypeEmptyBaseline},
		{"empty series", fmt.Errorf("fill: %w", spc.ErrEmptySeries), http.StatusUnprocessableEntity, TypeNoEvents},
		{"negative count", fmt.Errorf("fill: %w", spc.ErrInvalidCount), http.StatusUnprocessableEntity, TypeDataInvalid},
		{"extraction", NewExtractionError("sql failed", io.EOF), http.StatusBadGateway, TypeSourceUnavailable},
		{"network", NewNetworkError("api down", nil), http.StatusBadGateway, TypeSourceUnavailable},
		{"parsing", NewParsingError("bad csv", nil), http.StatusUnprocessableEntity, TypeDataInvalid},
		{"not found", NewNotFoundError("run"), http.StatusNotFound, TypeNotFound},
		{"unknown", io.ErrUnexpectedEOF, http.StatusInternalServerError, TypeInternal},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/spc/report", nil)
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/v1/spc/report", problem.Instance)
		})
	}
}

func TestErrorToProblemAnalysisWrapsSentinel(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/spc/runs", nil)

	err := NewAnalysisError("spc failed", spc.ErrEmptyBaseline)
	problem := h.ErrorToProblem(err, r)

	assert.Equal(t, TypeEmptyBaseline, problem.Type)
}

func TestErrorToProblemAPIErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		wantType string
	}{
		{"validation", New(http.StatusBadRequest, "VALIDATION_FAILED", "bad body"), TypeValidation},
		{"invalid request", New(http.StatusBadRequest, "INVALID_REQUEST", "bad query"), TypeValidation},
		{"not found", New(http.StatusNotFound, "NOT_FOUND", "missing"), TypeNotFound},
		{"report", ErrReportNotFound, TypeReportNotFound},
		{"run", ErrRunInProgress, TypeRunInProgress},
		{"unmapped code", New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "down"), TypeInternal},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/spc/report", nil)
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.err.StatusCode, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.ErrorCode, problem.Extensions["error_code"])
		})
	}
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/spc/report", nil)

	h.HandleError(w, r, ErrReportNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeReportNotFound, body["type"])
	assert.Equal(t, "REPORT_NOT_FOUND", body["error_code"])
	assert.Contains(t, body, "trace_id")
}

func TestHandlePanic(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), true)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/boom", nil)

	h.HandlePanic(w, r, "boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["panic"])
	assert.NotEmpty(t, body["stack"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/v1/spc/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "DELETE")
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TypeInternal)
}

func TestErrorMiddlewarePassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/spc/runs", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}
