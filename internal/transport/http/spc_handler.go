package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apperrors "spccli/internal/errors"
	custommw "spccli/internal/middleware"
	api "spccli/pkg/contracts/api/v1"
)

// SPCHandler serves run reports and triggers pipeline runs
type SPCHandler struct {
	service      PipelineServiceInterface
	validator    *custommw.ValidationMiddleware
	errorHandler *apperrors.ErrorHandler
	runLimiter   func(http.Handler) http.Handler
	logger       *slog.Logger
}

// NewSPCHandler creates a new SPC handler
func NewSPCHandler(service PipelineServiceInterface, validator *custommw.ValidationMiddleware, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *SPCHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apperrors.NewErrorHandler(logger, false)
	}
	if validator == nil {
		validator = custommw.NewValidationMiddleware(logger, errorHandler)
	}
	return &SPCHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "spc")),
	}
}

// WithRunLimiter throttles POST /runs with the given middleware
func (h *SPCHandler) WithRunLimiter(limiter func(http.Handler) http.Handler) *SPCHandler {
	h.runLimiter = limiter
	return h
}

// Routes returns the SPC routes
func (h *SPCHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/report", h.GetReport)
	r.Group(func(r chi.Router) {
		if h.runLimiter != nil {
			r.Use(h.runLimiter)
		}
		r.Use(custommw.ContentTypeValidator("application/json"))
		r.Use(h.validator.ValidateRequest)
		r.Post("/runs", h.CreateRun)
	})
	return r
}

// GetReport handles GET /api/v1/spc/report
func (h *SPCHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Latest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// CreateRun handles POST /api/v1/spc/runs. The run executes synchronously;
// a failed run answers with a problem document that still names the run and
// its steps.
func (h *SPCHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RunRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "run requested",
		slog.String("mode", req.Mode),
		slog.String("request_id", middleware.GetReqID(ctx)))

	resp, err := h.service.Run(ctx, req)
	if err != nil {
		if resp == nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		h.logger.WarnContext(ctx, "run failed",
			slog.String("run_id", resp.RunID),
			slog.String("error", err.Error()))

		problem := h.errorHandler.ErrorToProblem(err, r).
			WithExtension("run_id", resp.RunID).
			WithExtension("steps", resp.Steps).
			WithExtension("trace_id", middleware.GetReqID(ctx))
		problem.Render(w, r)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}
