package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spccli/internal/config"
	"spccli/pkg/contracts/domain"
)

// ErrNotConfigured is returned when a source lacks required settings.
var ErrNotConfigured = errors.New("source is not configured")

// Result is the outcome of one extraction.
type Result struct {
	Table domain.RawTable
	// Source names the extractor that produced Table.
	Source string
	// FallbackReason is the primary failure when Table came from a fallback.
	FallbackReason string
	Err            error
}

// Extractor reads a raw event table from a source.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) Result
}

func failed(source string, err error) Result {
	return Result{Source: source, Err: err}
}

type fallbackExtractor struct {
	primary  Extractor
	fallback Extractor
	logger   *slog.Logger
}

// WithFallback returns an extractor that uses fallback whenever primary
// fails. Cancellation of ctx is never masked by the fallback.
func WithFallback(primary, fallback Extractor, logger *slog.Logger) Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallbackExtractor{primary: primary, fallback: fallback, logger: logger}
}

func (f *fallbackExtractor) Name() string {
	return f.primary.Name()
}

func (f *fallbackExtractor) Extract(ctx context.Context) Result {
	res := f.primary.Extract(ctx)
	if res.Err == nil || ctx.Err() != nil {
		return res
	}

	f.logger.InfoContext(ctx, "primary source not used, falling back",
		slog.String("source", f.primary.Name()),
		slog.String("fallback", f.fallback.Name()),
		slog.String("reason", res.Err.Error()))

	fb := f.fallback.Extract(ctx)
	fb.FallbackReason = res.Err.Error()
	return fb
}

// New builds the extractor selected by cfg.Kind. The auto kind picks the
// first configured source among SQL, API and file, and SQL otherwise. When
// cfg.Fallback is set any non-synthetic source falls back to the synthetic
// dataset.
func New(cfg config.SourceConfig, logger *slog.Logger) (Extractor, error) {
	kind := cfg.Kind
	if kind == config.SourceAuto || kind == "" {
		kind = autoKind(cfg)
	}

	synthetic, err := NewSyntheticExtractor(cfg.Synthetic)
	if err != nil {
		return nil, err
	}

	var primary Extractor
	switch kind {
	case config.SourceSynthetic:
		return synthetic, nil
	case config.SourceSQL:
		primary, err = NewSQLExtractor(cfg.SQL)
	case config.SourceAPI:
		primary, err = NewAPIExtractor(cfg.API)
	case config.SourceFile:
		primary = NewFileExtractor(cfg.File)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Fallback {
		return WithFallback(primary, synthetic, logger), nil
	}
	return primary, nil
}

func autoKind(cfg config.SourceConfig) string {
	switch {
	case cfg.SQL.Configured():
		return config.SourceSQL
	case cfg.API.BaseURL != "":
		return config.SourceAPI
	case cfg.File.Path != "":
		return config.SourceFile
	default:
		return config.SourceSQL
	}
}
