package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/dispatch"
	"github.com/cohortiq/cohort-engine/pkg/middleware"
	"github.com/cohortiq/cohort-engine/pkg/services"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// TemplateCatalogResponse lists the preset request menu.
type TemplateCatalogResponse struct {
	Templates []dispatch.RuleInfo `json:"templates"`
}

// GenerateTemplateRequest is the POST body for template generation.
type GenerateTemplateRequest struct {
	Request string `json:"request"`
}

// TemplatesHandler serves the deterministic preset path.
type TemplatesHandler struct {
	templates services.TemplateService
	sessions  *session.Manager
	logger    *zap.Logger
}

// NewTemplatesHandler creates a new TemplatesHandler.
func NewTemplatesHandler(templates services.TemplateService, sessions *session.Manager, logger *zap.Logger) *TemplatesHandler {
	return &TemplatesHandler{
		templates: templates,
		sessions:  sessions,
		logger:    logger,
	}
}

// RegisterRoutes registers the template handler's routes on the given mux.
// No auth: the preset path carries no credentials and queries nothing live.
func (h *TemplatesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates", h.Catalog)
	mux.HandleFunc("POST /api/templates/generate", h.Generate)
}

// Catalog handles GET /api/templates
func (h *TemplatesHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response := TemplateCatalogResponse{Templates: h.templates.Catalog()}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Generate handles POST /api/templates/generate
// Always returns 200 with a bundle: unrecognized requests resolve to the
// fallback bundle, not an error.
func (h *TemplatesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	ws := h.sessions.Load(r)
	bundle := h.templates.Generate(r.Context(), ws, req.Request)
	middleware.ObserveTemplateRequest(bundle.RuleID)

	// Save before the body goes out; Set-Cookie rides the response headers.
	if err := h.sessions.Save(r, w, ws); err != nil {
		h.logger.Warn("Failed to save workspace session", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: bundle}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
