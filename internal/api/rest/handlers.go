package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
	"github.com/finguard/fraud-screening-backend/internal/domain/transaction"
	"github.com/finguard/fraud-screening-backend/internal/service/workflow"
)

// ScreenRequest is the orchestrator entry point payload.
type ScreenRequest struct {
	Transaction transaction.Features           `json:"transaction"`
	Behavioral  transaction.BehavioralFeatures `json:"behavioral"`
}

// Handler exposes the screening workflow over HTTP.
type Handler struct {
	screening workflow.Service
	health    *HealthService
	logger    *slog.Logger
}

// NewHandler creates the REST handler.
func NewHandler(screening workflow.Service, health *HealthService, logger *slog.Logger) *Handler {
	return &Handler{
		screening: screening,
		health:    health,
		logger:    logger,
	}
}

// Routes registers all handlers on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/screen", h.handleScreen)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

func (h *Handler) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError("MALFORMED_BODY", "request body is not valid JSON").WithCause(err))
		return
	}

	resp, err := h.screening.Screen(r.Context(), req.Transaction, req.Behavioral)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.GetStatusCode(err)
	resp := errorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		resp.Code = appErr.Code
		resp.Type = string(appErr.Type)
	}

	if status >= 500 {
		h.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	h.writeJSON(w, status, resp)
}
