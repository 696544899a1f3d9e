package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/schema"
)

// ListSchemasResponse wraps the schema id list.
type ListSchemasResponse struct {
	Schemas []string `json:"schemas"`
}

// SchemaDescriptionResponse carries the stable description text embedded in
// model prompts.
type SchemaDescriptionResponse struct {
	Schema      string `json:"schema"`
	Description string `json:"description"`
}

// SchemasHandler serves the static schema registry.
type SchemasHandler struct {
	logger *zap.Logger
}

// NewSchemasHandler creates a new SchemasHandler.
func NewSchemasHandler(logger *zap.Logger) *SchemasHandler {
	return &SchemasHandler{logger: logger}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemasHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schemas", h.List)
	mux.HandleFunc("GET /api/schemas/{id}", h.Get)
	mux.HandleFunc("GET /api/schemas/{id}/description", h.Describe)
}

// List handles GET /api/schemas
func (h *SchemasHandler) List(w http.ResponseWriter, r *http.Request) {
	response := ListSchemasResponse{Schemas: schema.IDs()}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/schemas/{id}
func (h *SchemasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	def, err := schema.Get(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownSchema) {
			if err := ErrorResponse(w, http.StatusNotFound, "unknown_schema", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to load schema", zap.String("schema", id), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "schema_lookup_failed", "Failed to load schema"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: def}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Describe handles GET /api/schemas/{id}/description
func (h *SchemasHandler) Describe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	description, err := schema.DescribeID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownSchema) {
			if err := ErrorResponse(w, http.StatusNotFound, "unknown_schema", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to describe schema", zap.String("schema", id), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "schema_lookup_failed", "Failed to describe schema"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := SchemaDescriptionResponse{Schema: id, Description: description}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
