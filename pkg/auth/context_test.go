package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func contextWithClaims(claims *Claims) context.Context {
	return context.WithValue(context.Background(), ClaimsKey, claims)
}

func TestGetUserIDFromContext(t *testing.T) {
	userID := uuid.New()
	claims := &Claims{}
	claims.Subject = userID.String()

	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{"with claims", contextWithClaims(claims), userID.String()},
		{"without claims", context.Background(), ""},
		{"nil claims", contextWithClaims(nil), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserIDFromContext(tt.ctx); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGetUsernameFromContext(t *testing.T) {
	claims := &Claims{Username: "maria"}

	if got := GetUsernameFromContext(contextWithClaims(claims)); got != "maria" {
		t.Errorf("expected 'maria', got %q", got)
	}
	if got := GetUsernameFromContext(context.Background()); got != "" {
		t.Errorf("expected empty username without claims, got %q", got)
	}
}

func TestGetRoleFromContext(t *testing.T) {
	claims := &Claims{Role: "admin"}

	if got := GetRoleFromContext(contextWithClaims(claims)); got != "admin" {
		t.Errorf("expected 'admin', got %q", got)
	}
	if got := GetRoleFromContext(context.Background()); got != "" {
		t.Errorf("expected empty role without claims, got %q", got)
	}
}

func TestGetUserUUIDFromContext(t *testing.T) {
	userID := uuid.New()

	t.Run("valid UUID subject", func(t *testing.T) {
		claims := &Claims{}
		claims.Subject = userID.String()

		got, ok := GetUserUUIDFromContext(contextWithClaims(claims))
		if !ok {
			t.Fatal("expected UUID to be found")
		}
		if got != userID {
			t.Errorf("expected %s, got %s", userID, got)
		}
	})

	t.Run("non-UUID subject", func(t *testing.T) {
		claims := &Claims{}
		claims.Subject = "not-a-uuid"

		_, ok := GetUserUUIDFromContext(contextWithClaims(claims))
		if ok {
			t.Error("expected no UUID for malformed subject")
		}
	})

	t.Run("no claims", func(t *testing.T) {
		_, ok := GetUserUUIDFromContext(context.Background())
		if ok {
			t.Error("expected no UUID without claims")
		}
	})
}

func TestRequireUserUUIDFromContext(t *testing.T) {
	userID := uuid.New()
	claims := &Claims{}
	claims.Subject = userID.String()

	got, err := RequireUserUUIDFromContext(contextWithClaims(claims))
	if err != nil {
		t.Fatalf("RequireUserUUIDFromContext failed: %v", err)
	}
	if got != userID {
		t.Errorf("expected %s, got %s", userID, got)
	}

	if _, err := RequireUserUUIDFromContext(context.Background()); err == nil {
		t.Error("expected error without claims")
	}
}
