package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		err := NewExtractionError("sql query failed", io.EOF)
		assert.Equal(t, "[EXTRACTION] sql query failed: EOF", err.Error())
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewNotFoundError("report")
		assert.Equal(t, "[NOT_FOUND] report not found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("context", func(t *testing.T) {
		err := NewAppError(ErrTypeStorage, "write failed", nil).
			WithContext("path", "reports/summary.csv")
		assert.Equal(t, "reports/summary.csv", err.Context["path"])
	})
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"plain", io.EOF, ""},
		{"direct", NewParsingError("x", nil), ErrTypeParsing},
		{"wrapped", fmt.Errorf("step: %w", NewConfigError("x", nil)), ErrTypeConfig},
		{"outermost wins", NewAnalysisError("outer", NewStorageError("inner", nil)), ErrTypeAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestAPIError(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "current_fy", Message: "must be at least 2000"}})
	assert.Equal(t, 400, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	details, ok := err.Details.(ValidationErrors)
	assert.True(t, ok)
	assert.Len(t, details.Errors, 1)

	nf := NotFoundError("run")
	assert.Equal(t, "run not found", nf.Error())
}
