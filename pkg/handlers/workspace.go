package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/schema"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// UpdateWorkspaceRequest replaces the session's schema and selections.
type UpdateWorkspaceRequest struct {
	Schema     string                   `json:"schema"`
	Selections []models.CohortSelection `json:"selections"`
}

// WorkspaceHandler exposes the per-session workspace.
type WorkspaceHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(sessions *session.Manager, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers the workspace handler's routes on the given mux.
func (h *WorkspaceHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/workspace", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/workspace", authMiddleware.RequireAuth(h.Update))
}

// Get handles GET /api/workspace
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := h.sessions.Load(r)
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: ws}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/workspace
// Replaces the stored schema and selections; the last request text and the
// activity dedupe marks are kept.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Schema != "" {
		if _, err := schema.Get(req.Schema); errors.Is(err, apperrors.ErrUnknownSchema) {
			if err := ErrorResponse(w, http.StatusBadRequest, "unknown_schema", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}

	ws := h.sessions.Load(r)
	ws.SchemaID = req.Schema
	ws.Selections = req.Selections

	if err := h.sessions.Save(r, w, ws); err != nil {
		h.logger.Error("Failed to save workspace session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_save_failed", "Failed to save workspace"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: ws}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
