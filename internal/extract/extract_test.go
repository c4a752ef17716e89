package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/internal/config"
	"spccli/pkg/contracts/domain"
)

type stubExtractor struct {
	name   string
	result Result
	calls  int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context) Result {
	s.calls++
	return s.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithFallback(t *testing.T) {
	table := domain.RawTable{Columns: []string{"CollectionDate"}, Rows: [][]string{{"2024-04-01"}}}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &stubExtractor{name: "sql", result: Result{Table: table, Source: "sql"}}
		fallback := &stubExtractor{name: "synthetic"}

		res := WithFallback(primary, fallback, discardLogger()).Extract(context.Background())

		require.NoError(t, res.Err)
		assert.Equal(t, "sql", res.Source)
		assert.Empty(t, res.FallbackReason)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &stubExtractor{name: "sql", result: failed("sql", ErrNotConfigured)}
		fallback := &stubExtractor{name: "synthetic", result: Result{Table: table, Source: "synthetic"}}

		ex := WithFallback(primary, fallback, discardLogger())
		res := ex.Extract(context.Background())

		require.NoError(t, res.Err)
		assert.Equal(t, "sql", ex.Name())
		assert.Equal(t, "synthetic", res.Source)
		assert.Equal(t, ErrNotConfigured.Error(), res.FallbackReason)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("cancelled context is not masked", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		primary := &stubExtractor{name: "api", result: failed("api", context.Canceled)}
		fallback := &stubExtractor{name: "synthetic"}

		res := WithFallback(primary, fallback, nil).Extract(ctx)

		assert.True(t, errors.Is(res.Err, context.Canceled))
		assert.Equal(t, 0, fallback.calls)
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SourceConfig
		wantName string
		wrapped  bool
	}{
		{"synthetic", config.SourceConfig{Kind: config.SourceSynthetic, Fallback: true}, SourceSynthetic, false},
		{"auto without settings uses sql", config.SourceConfig{Kind: config.SourceAuto}, SourceSQL, false},
		{"auto prefers api over file", config.SourceConfig{
			Kind: config.SourceAuto,
			API:  config.APIConfig{BaseURL: "http://example"},
			File: config.FileConfig{Path: "events.csv"},
		}, SourceAPI, false},
		{"auto picks file", config.SourceConfig{Kind: config.SourceAuto, File: config.FileConfig{Path: "events.csv"}}, SourceFile, false},
		{"sql with fallback", config.SourceConfig{Kind: config.SourceSQL, Fallback: true}, SourceSQL, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := New(tt.cfg, discardLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, ex.Name())
			_, isFallback := ex.(*fallbackExtractor)
			assert.Equal(t, tt.wrapped, isFallback)
		})
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(config.SourceConfig{Kind: "ftp"}, discardLogger())
	assert.Error(t, err)
}

func TestDefaultSourceFallsBackToSynthetic(t *testing.T) {
	ex, err := New(config.Default().Source, discardLogger())
	require.NoError(t, err)

	res := ex.Extract(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, SourceSynthetic, res.Source)
	assert.Contains(t, res.FallbackReason, "SQL configuration is incomplete")
}
