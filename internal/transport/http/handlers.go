// Package http exposes the analysis engine over a JSON API. The API
// accepts already-typed records, never spreadsheet uploads; file
// handling stays with the CLI and its ingestion layer.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"examstats/internal/analysis"
	"examstats/internal/apperrors"
)

// apiError is the JSON error envelope.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// Render implements render.Renderer.
func (e *apiError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

// Handler serves the analysis API.
type Handler struct {
	service  *analysis.Service
	validate *validator.Validate
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(service *analysis.Service, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateAnalysis runs one analysis request to completion and returns
// the full result document.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req analysis.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderError(w, r, &apiError{
			Status:  http.StatusBadRequest,
			Code:    "malformed_request",
			Message: "request body is not valid JSON: " + err.Error(),
		})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.renderError(w, r, &apiError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "validation_failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.metrics.ObserveAnalysis("error", 0, 0)
		h.renderError(w, r, errorToAPI(err))
		return
	}

	h.metrics.ObserveAnalysis("success", time.Since(start).Seconds(), len(result.Warnings))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apiError) {
	apiErr.TraceID = middleware.GetReqID(r.Context())
	h.logger.WarnContext(r.Context(), "request failed",
		slog.Int("status", apiErr.Status),
		slog.String("code", apiErr.Code),
		slog.String("message", apiErr.Message),
	)
	if err := render.Render(w, r, apiErr); err != nil {
		h.logger.ErrorContext(r.Context(), "render error response", slog.String("error", err.Error()))
	}
}

// errorToAPI maps the analysis error taxonomy onto HTTP statuses.
// Structural input problems are the client's to fix; everything
// unrecognized is a 500.
func errorToAPI(err error) *apiError {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return &apiError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: err.Error(),
		}
	}

	status := http.StatusUnprocessableEntity
	switch appErr.Kind {
	case apperrors.KindMergeConflict:
		status = http.StatusConflict
	case apperrors.KindInvalidInput, apperrors.KindSchemaMismatch:
		status = http.StatusBadRequest
	}
	return &apiError{
		Status:  status,
		Code:    string(appErr.Kind),
		Message: appErr.Error(),
	}
}
