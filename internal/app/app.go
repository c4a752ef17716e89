package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"spccli/internal/config"
	apperrors "spccli/internal/errors"
	"spccli/internal/infrastructure"
	custommw "spccli/internal/middleware"
	"spccli/internal/services"
	handlers "spccli/internal/transport/http"
	"spccli/pkg/contracts"
	api "spccli/pkg/contracts/api/v1"
)

// Application represents the HTTP service container
type Application struct {
	Config          *config.Config
	Paths           *config.Paths
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Pipeline        *Pipeline
	PipelineService *services.PipelineService
	DataService     *services.DataService
	HealthService   *services.HealthService
	Router          *chi.Mux
	Server          *http.Server
}

// NewApplication builds the pipeline, the services and the router. The
// caller owns providers and shuts them down.
func NewApplication(cfg *config.Config, paths *config.Paths, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := NewPipeline(cfg, paths, providers, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Pipeline:      pipeline,
	}
	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		pipeline.Close()
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes the services on top of the pipeline
func (a *Application) initializeServices() {
	a.DataService = services.NewDataService(a.Paths, a.Logger)
	a.PipelineService = services.NewPipelineService(
		a.Pipeline.Manager,
		SPCOptions(a.Config.SPC),
		a.DataService,
		a.Logger,
	)
	a.HealthService = services.NewHealthService(
		a.PipelineService,
		a.Pipeline.Extractor.Name(),
		a.Pipeline.Dispatcher.Channels(),
		a.Logger,
	)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	// RequestID → RealIP → OTel → logging/recovery → headers
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	otelMiddleware, err := custommw.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(apperrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.CORS(custommw.CORSConfig{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		ExposedHeaders: []string{custommw.RequestIDHeader},
		Logger:         a.Logger,
	}))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	validator := custommw.NewValidationMiddleware(a.Logger, errorHandler)

	spcHandler := handlers.NewSPCHandler(a.PipelineService, validator, errorHandler, a.Logger)
	if a.Config.Server.RunRateLimit > 0 {
		burst := a.Config.Server.RunRateBurst
		if burst < 1 {
			burst = 1
		}
		spcHandler.WithRunLimiter(custommw.NewRateLimiter(a.Config.Server.RunRateLimit, burst, a.Logger).Handler)
	}
	filesHandler := handlers.NewFilesHandler(a.DataService, validator, errorHandler, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Route("/"+contracts.APIVersion+"/spc", func(r chi.Router) {
			r.Mount("/files", filesHandler.Routes())
			r.Mount("/", spcHandler.Routes())
		})
	})

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run serves until ctx is cancelled or the server fails, then shuts down
// gracefully. With RunOnStart a pipeline run starts alongside the server.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting SPC service",
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("source", a.Pipeline.Extractor.Name()),
		slog.String("reports_dir", a.Paths.ReportsDir))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if a.Config.Server.RunOnStart {
		go a.runOnStart(ctx)
	}

	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	case err, ok := <-errCh:
		if ok {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	return a.Stop(context.Background())
}

func (a *Application) runOnStart(ctx context.Context) {
	if _, err := a.PipelineService.Run(ctx, api.RunRequest{}); err != nil {
		a.Logger.WarnContext(ctx, "Initial pipeline run failed", slog.String("error", err.Error()))
	}
}

// Stop gracefully stops the server and releases the alert publishers
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down SPC service")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Pipeline.Close(); err != nil {
		errs = append(errs, fmt.Errorf("alert publisher shutdown error: %w", err))
	}

	a.Logger.InfoContext(ctx, "SPC service shutdown complete")
	return errors.Join(errs...)
}
