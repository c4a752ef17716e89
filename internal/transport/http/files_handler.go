package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "spccli/internal/errors"
	custommw "spccli/internal/middleware"
)

// FilesHandler lists and serves the files written by runs
type FilesHandler struct {
	service      DataServiceInterface
	validator    *custommw.ValidationMiddleware
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service DataServiceInterface, validator *custommw.ValidationMiddleware, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apperrors.NewErrorHandler(logger, false)
	}
	if validator == nil {
		validator = custommw.NewValidationMiddleware(logger, errorHandler)
	}
	return &FilesHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "files_handler")),
	}
}

// Routes returns the file routes
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListFiles)
	r.Route("/{kind}/{name}", func(r chi.Router) {
		r.Use(h.FileCtx)
		r.Get("/", h.DownloadFile)
	})
	return r
}

// FileCtx validates the file name path parameter
func (h *FilesHandler) FileCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.validator.ValidateVar("name", chi.URLParam(r, "name"), "filename"); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListFiles handles GET /api/v1/spc/files
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, files)
}

// DownloadFile handles GET /api/v1/spc/files/{kind}/{name}
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")

	path, err := h.service.ResolveFile(r.Context(), kind, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "serving output file",
		slog.String("kind", kind),
		slog.String("path", path))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
