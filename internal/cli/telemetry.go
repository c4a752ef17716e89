package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"spccli/internal/app"
	"spccli/internal/infrastructure"
)

// startTelemetry opens the dated trace file when traces go to a file and
// starts the providers. The returned stop function flushes both.
func (rt *runtime) startTelemetry() (*infrastructure.OTelProviders, func(), error) {
	var (
		traceWriter io.Writer
		traceFile   *os.File
	)
	if rt.cfg.Telemetry.TraceExporter == "file" {
		path := rt.paths.TracePath(time.Now())
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open trace file", goerr.V("path", path))
		}
		traceWriter, traceFile = f, f
	}

	providers, err := infrastructure.InitializeOTel(app.OTelConfig(rt.cfg.Telemetry, traceWriter), rt.logger)
	if err != nil {
		if traceFile != nil {
			traceFile.Close()
		}
		return nil, nil, goerr.Wrap(err, "failed to initialize telemetry")
	}

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			rt.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
		if traceFile != nil {
			traceFile.Close()
		}
	}
	return providers, stop, nil
}
