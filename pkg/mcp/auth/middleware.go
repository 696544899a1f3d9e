// Package mcpauth gates the MCP endpoint with a static bearer key.
// Failures carry RFC 6750 WWW-Authenticate headers so standard MCP clients
// can surface a useful error instead of a bare status code.
package mcpauth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware validates the MCP bearer key. MCP clients are long-lived
// configured integrations, not browser sessions, so the endpoint uses a
// single deployment-scoped key rather than per-user JWTs.
type Middleware struct {
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates MCP auth middleware for the given key. An empty
// key disables the check and leaves the endpoint open; that is the
// expected setup for single-user localhost deployments.
func NewMiddleware(apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		apiKey: apiKey,
		logger: logger,
	}
}

// RequireKey validates the Authorization header against the configured key.
func (m *Middleware) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("MCP auth failed: missing Authorization header",
				zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "Missing bearer token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Debug("MCP auth failed: malformed Authorization header",
				zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_request", "Authorization header must use the Bearer scheme")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(m.apiKey)) != 1 {
			m.logger.Warn("MCP auth failed: wrong key",
				zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "The provided key is not valid")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeWWWAuthenticate writes an RFC 6750 Bearer token error response.
// See: https://datatracker.ietf.org/doc/html/rfc6750#section-3
func (m *Middleware) writeWWWAuthenticate(w http.ResponseWriter, status int, errorCode, description string) {
	headerValue := `Bearer error="` + errorCode + `", error_description="` + description + `"`
	w.Header().Set("WWW-Authenticate", headerValue)
	w.WriteHeader(status)
}
