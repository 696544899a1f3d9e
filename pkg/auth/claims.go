// Package auth provides JWT-based authentication for cohort-engine.
// Tokens are issued and validated locally using an HMAC secret; there is
// no external identity provider.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims issued at login.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds the account fields handlers and services need without a user
// lookup. Subject holds the user UUID.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"` // Login name
	Role     string `json:"role,omitempty"`     // admin or researcher
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// ExtractClaimsFromContext extracts the user UUID and username from JWT
// claims in context. Returns an error if not authenticated or claims are
// invalid.
func ExtractClaimsFromContext(ctx context.Context) (uuid.UUID, string, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, "", fmt.Errorf("authentication required: no claims in context")
	}

	if claims.Subject == "" {
		return uuid.Nil, "", fmt.Errorf("missing user ID in JWT claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user ID format: %w", err)
	}

	if claims.Username == "" {
		return uuid.Nil, "", fmt.Errorf("missing username in JWT claims")
	}

	return userID, claims.Username, nil
}
