package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/services"
)

// ActivityListResponse wraps the recent-events list for the admin view.
type ActivityListResponse struct {
	Events []*models.ActivityEvent `json:"events"`
}

// ActivityHandler serves the admin usage log.
type ActivityHandler struct {
	activity services.ActivityService
	logger   *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity services.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, logger: logger}
}

// RegisterRoutes registers the activity handler's routes on the given mux.
func (h *ActivityHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/activity", authMiddleware.RequireRole(models.RoleAdmin)(h.List))
}

// List handles GET /api/activity?limit=N
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	events, err := h.activity.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "activity_list_failed", "Failed to list activity"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: ActivityListResponse{Events: events}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
