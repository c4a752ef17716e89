package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"spccli/internal/config"
	apperrors "spccli/internal/errors"
	api "spccli/pkg/contracts/api/v1"
	"spccli/pkg/contracts/domain"
)

// Output kinds, one per output directory
const (
	KindRaw       = "raw"
	KindProcessed = "processed"
	KindReports   = "reports"
)

// DataService provides read access to the files written by runs
type DataService struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewDataService creates a new data service
func NewDataService(paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{paths: paths, logger: logger}
}

func (ds *DataService) dirFor(kind string) (string, error) {
	switch kind {
	case KindRaw:
		return ds.paths.RawDir, nil
	case KindProcessed:
		return ds.paths.ProcessedDir, nil
	case KindReports, "report":
		return ds.paths.ReportsDir, nil
	default:
		return "", apperrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid file kind: %s", kind), kind)
	}
}

// ListFiles returns the output files of every kind, newest first
func (ds *DataService) ListFiles(ctx context.Context) (*api.FilesResponse, error) {
	resp := &api.FilesResponse{Files: []api.OutputFile{}}
	for _, kind := range []string{KindRaw, KindProcessed, KindReports} {
		files, err := ds.listFiles(ctx, kind)
		if err != nil {
			return nil, err
		}
		resp.Files = append(resp.Files, files...)
	}

	sort.SliceStable(resp.Files, func(i, j int) bool {
		return resp.Files[i].ModTime.After(resp.Files[j].ModTime)
	})
	resp.Total = len(resp.Files)
	return resp, nil
}

func (ds *DataService) listFiles(ctx context.Context, kind string) ([]api.OutputFile, error) {
	dir, err := ds.dirFor(kind)
	if err != nil {
		return nil, err
	}

	ds.logger.DebugContext(ctx, "listFiles: scanning directory",
		slog.String("kind", kind),
		slog.String("directory", dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("failed to list "+kind+" files", err)
	}

	var files []api.OutputFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, api.OutputFile{
			Name:    entry.Name(),
			Kind:    kind,
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// ResolveFile returns the absolute path of an output file. Names that would
// leave the kind's directory are rejected.
func (ds *DataService) ResolveFile(ctx context.Context, kind, name string) (string, error) {
	dir, err := ds.dirFor(kind)
	if err != nil {
		return "", err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", apperrors.NewStorageError("invalid directory path", err)
	}
	absFile, err := filepath.Abs(filepath.Join(absDir, filepath.FromSlash(filepath.Clean("/"+name))))
	if err != nil {
		return "", apperrors.NewStorageError("invalid file path", err)
	}

	if absFile == absDir || !strings.HasPrefix(absFile, absDir+string(filepath.Separator)) {
		ds.logger.WarnContext(ctx, "Attempted directory traversal",
			slog.String("requested_path", name),
			slog.String("resolved_path", absFile),
			slog.String("base_dir", absDir))
		return "", apperrors.NotFoundError("file " + name)
	}

	info, err := os.Stat(absFile)
	if err != nil || info.IsDir() {
		return "", apperrors.NotFoundError("file " + name)
	}
	return absFile, nil
}

// LatestRunReport loads the most recently written run report from disk
func (ds *DataService) LatestRunReport(ctx context.Context) (*domain.RunReport, error) {
	matches, err := filepath.Glob(ds.paths.RunReportPattern())
	if err != nil {
		return nil, apperrors.NewStorageError("invalid run report pattern", err)
	}

	var (
		newest     string
		newestInfo os.FileInfo
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest, newestInfo = path, info
		}
	}
	if newest == "" {
		return nil, apperrors.ErrReportNotFound
	}

	data, err := os.ReadFile(newest)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read run report", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewParsingError("failed to decode run report "+filepath.Base(newest), err)
	}

	ds.logger.InfoContext(ctx, "Loaded persisted run report",
		slog.String("path", newest),
		slog.Int("current_fy", report.CurrentFY))
	return &report, nil
}
