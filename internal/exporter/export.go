package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"spccli/internal/config"
	"spccli/pkg/contracts/domain"
)

// Bundle holds everything a run persists. Nil or empty parts are skipped:
// a run that stops before analysis still writes its snapshots.
type Bundle struct {
	Raw        *domain.RawTable
	Events     *domain.EventTable
	Validation *domain.ValidationReport
	// Report is written with the flagged, summary, workbook and run files
	// once analysis has produced a current fiscal year.
	Report *domain.RunReport
}

// Exporter writes the files of a run under the configured paths
type Exporter struct {
	paths    *config.Paths
	spc      *SPCExporter
	workbook *WorkbookExporter
	logger   *slog.Logger
}

// New creates an exporter rooted at paths
func New(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:    paths,
		spc:      NewSPCExporter(logger),
		workbook: NewWorkbookExporter(),
		logger:   logger,
	}
}

// Export writes every file for b concurrently and returns the written paths
// in sorted order. The first failure cancels the remaining writes.
func (e *Exporter) Export(ctx context.Context, b Bundle) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		outputs []string
	)
	write := func(path string, fn func() error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(); err != nil {
				return err
			}
			e.logger.InfoContext(ctx, "output saved", slog.String("path", path))
			mu.Lock()
			outputs = append(outputs, path)
			mu.Unlock()
			return nil
		})
	}

	if b.Raw != nil {
		path := e.paths.RawEventsCSV()
		write(path, func() error { return e.spc.WriteRawEvents(path, *b.Raw) })
	}
	if b.Events != nil {
		path := e.paths.ProcessedEventsCSV()
		write(path, func() error { return e.spc.WriteProcessedEvents(path, *b.Events) })
	}
	if b.Validation != nil {
		path := e.paths.ValidationJSON()
		write(path, func() error { return e.spc.WriteJSON(path, b.Validation) })
	}

	if r := b.Report; r != nil && r.CurrentFY != 0 {
		flagged := e.paths.FlaggedCSV(r.CurrentFY)
		write(flagged, func() error { return e.spc.WriteFlagged(flagged, r.Flagged) })

		summary := e.paths.SummaryCSV()
		write(summary, func() error { return e.spc.WriteSummary(summary, r.Summary) })

		workbook := e.paths.WorkbookPath(r.CurrentFY)
		write(workbook, func() error { return e.workbook.WriteWorkbook(workbook, *r) })
	}

	if err := g.Wait(); err != nil {
		return outputs, fmt.Errorf("failed to export run outputs: %w", err)
	}

	sort.Strings(outputs)
	return outputs, nil
}

// WriteRunReport writes the JSON run report, which lists the other outputs
// and is therefore written last
func (e *Exporter) WriteRunReport(report domain.RunReport) (string, error) {
	path := e.paths.RunReportPath(report.CurrentFY)
	if err := e.spc.WriteJSON(path, report); err != nil {
		return "", err
	}
	e.logger.Info("run report saved", slog.String("path", path))
	return path, nil
}
