package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/llm"
	"github.com/cohortiq/cohort-engine/pkg/logging"
	"github.com/cohortiq/cohort-engine/pkg/middleware"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/services"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// QuestionRequest is the POST body for the free-text assistant.
type QuestionRequest struct {
	Schema   string `json:"schema"`
	Question string `json:"question"`
}

// CohortRequest is the POST body for the cohort builder.
type CohortRequest struct {
	Schema     string                   `json:"schema"`
	Selections []models.CohortSelection `json:"selections"`
}

// UnparseableResponse carries the raw model text back to the caller when the
// response could not be parsed, so the researcher can salvage it by hand.
type UnparseableResponse struct {
	RawResponse string `json:"raw_response"`
}

// AssistantHandler serves the model-backed generation path.
type AssistantHandler struct {
	assistant services.AssistantService
	sessions  *session.Manager
	logger    *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant services.AssistantService, sessions *session.Manager, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		sessions:  sessions,
		logger:    logger,
	}
}

// RegisterRoutes registers the assistant handler's routes on the given mux.
// Both routes hit a paid model API, so they require a login.
func (h *AssistantHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/assistant/question", authMiddleware.RequireAuth(h.Question))
	mux.HandleFunc("POST /api/assistant/cohort", authMiddleware.RequireAuth(h.Cohort))
}

// Question handles POST /api/assistant/question
func (h *AssistantHandler) Question(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Schema == "" || req.Question == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_parameters", "Missing schema or question"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	ws := h.sessions.Load(r)
	start := time.Now()
	resp, raw, err := h.assistant.AnswerOpenQuestion(r.Context(), ws, req.Schema, req.Question)
	h.writeResult(w, r, ws, resp, raw, err, start)
}

// Cohort handles POST /api/assistant/cohort
func (h *AssistantHandler) Cohort(w http.ResponseWriter, r *http.Request) {
	var req CohortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Schema == "" || len(req.Selections) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_parameters", "Missing schema or selections"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	ws := h.sessions.Load(r)
	start := time.Now()
	resp, raw, err := h.assistant.BuildCohort(r.Context(), ws, req.Schema, req.Selections, r.RemoteAddr)
	h.writeResult(w, r, ws, resp, raw, err, start)
}

// writeResult maps a generation outcome onto the wire. The workspace is saved
// on every path that reached the service: even a failed completion has marked
// the session's activity dedupe state.
func (h *AssistantHandler) writeResult(w http.ResponseWriter, r *http.Request, ws *session.Workspace, resp *models.QueryResponse, raw string, err error, start time.Time) {
	if saveErr := h.sessions.Save(r, w, ws); saveErr != nil {
		h.logger.Warn("Failed to save workspace session", zap.Error(saveErr))
	}

	if err == nil {
		middleware.ObserveCompletion(middleware.CompletionOK, time.Since(start))
		if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: resp}); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	if errors.Is(err, apperrors.ErrUnknownSchema) {
		if err := ErrorResponse(w, http.StatusBadRequest, "unknown_schema", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if isParseFailure(err) {
		middleware.ObserveCompletion(middleware.CompletionParseError, time.Since(start))
		payload := ApiResponse{
			Success: false,
			Error:   "unparseable_response",
			Message: err.Error(),
			Data:    UnparseableResponse{RawResponse: raw},
		}
		if err := WriteJSON(w, http.StatusUnprocessableEntity, payload); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		middleware.ObserveCompletion(middleware.CompletionModelError, time.Since(start))
		h.logger.Error("Model request failed",
			zap.String("error", logging.SanitizeError(err)))
		if err := ErrorResponse(w, http.StatusBadGateway, "model_error", "Model request failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.logger.Error("Assistant request failed", zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "assistant_failed", "Request failed"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// isParseFailure reports whether err is one of the response-parse sentinels.
func isParseFailure(err error) bool {
	return errors.Is(err, apperrors.ErrNoJSONBlock) ||
		errors.Is(err, apperrors.ErrMalformedJSON) ||
		errors.Is(err, apperrors.ErrMissingSQLField)
}
