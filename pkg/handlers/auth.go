package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/config"
	"github.com/cohortiq/cohort-engine/pkg/services"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// LoginRequest is the POST body for local login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse echoes the account the session was issued for.
type LoginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

// AuthHandler handles login, logout, and identity echo.
type AuthHandler struct {
	authService services.AuthService
	tokens      *auth.TokenManager
	sessions    *session.Manager
	config      *config.Config
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService, tokens *auth.TokenManager, sessions *session.Manager, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		sessions:    sessions,
		config:      cfg,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", authMiddleware.RequireAuth(h.Logout))
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
}

// Login handles POST /api/auth/login
// Verifies credentials and sets the session JWT as an httpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Username == "" || req.Password == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_parameters", "Missing username or password"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "login_failed", "Login failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Derive cookie settings from base URL
	cookieSettings := auth.DeriveCookieSettings(h.config.BaseURL, h.config.CookieDomain)

	// Set JWT in httpOnly cookie; expiry matches the token's
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   cookieSettings.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.TTL().Seconds()),
		Path:     "/",
		Domain:   cookieSettings.Domain,
	})

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: LoginResponse{
		Username: user.Username,
		Role:     user.Role,
	}}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout
// Clears the session cookie and the workspace cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetClaims(r.Context())
	if claims != nil {
		h.authService.Logout(r.Context(), claims.Username)
	}

	// Same settings used when setting the cookie
	cookieSettings := auth.DeriveCookieSettings(h.config.BaseURL, h.config.CookieDomain)

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   cookieSettings.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1, // Delete immediately
		Path:     "/",
		Domain:   cookieSettings.Domain,
	})

	if err := h.sessions.Clear(r, w); err != nil {
		h.logger.Warn("Failed to clear workspace session", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Logged out"}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Me handles GET /api/auth/me
// Returns the authenticated user's claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := MeResponse{
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		response.ExpiresAt = claims.ExpiresAt.Unix()
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
