package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"spccli/internal/config"
	"spccli/internal/dataprocessing"
	apierrors "spccli/internal/errors"
	"spccli/pkg/contracts/domain"
)

// SourceFile names the CSV/XLSX extractor.
const SourceFile = "file"

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FileExtractor reads events from a CSV or XLSX export.
type FileExtractor struct {
	cfg config.FileConfig
}

// NewFileExtractor creates an extractor for cfg.
func NewFileExtractor(cfg config.FileConfig) *FileExtractor {
	return &FileExtractor{cfg: cfg}
}

// Name implements Extractor
func (e *FileExtractor) Name() string {
	return SourceFile
}

// Extract implements Extractor
func (e *FileExtractor) Extract(ctx context.Context) Result {
	if e.cfg.Path == "" {
		return failed(SourceFile, apierrors.NewConfigError("no input file configured", ErrNotConfigured))
	}
	if err := ctx.Err(); err != nil {
		return failed(SourceFile, err)
	}

	var (
		table domain.RawTable
		err   error
	)
	switch strings.ToLower(filepath.Ext(e.cfg.Path)) {
	case ".csv", ".txt":
		table, err = dataprocessing.ParseCSVFile(e.cfg.Path)
	case ".xlsx", ".xlsm":
		table, err = dataprocessing.ParseWorkbook(e.cfg.Path, e.cfg.Sheet)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return failed(SourceFile, apierrors.NewExtractionError("failed to read "+e.cfg.Path, err).
			WithContext("path", e.cfg.Path))
	}
	return Result{Table: table, Source: SourceFile}
}
