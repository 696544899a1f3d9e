// Package testhelpers provides utilities for testing cohort-engine components.
package testhelpers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

// GenerateTestToken issues a signed session token for handler and middleware
// tests. The token is produced by the real token manager, so it passes the
// same validation the server performs.
func GenerateTestToken(t *testing.T, secret, username, role string) string {
	t.Helper()

	manager, err := auth.NewTokenManager(secret, 0)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}

	token, err := manager.IssueToken(&models.User{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}
	return token
}

// GenerateTestTokenWithBearer returns a token with the "Bearer " prefix for
// Authorization headers.
func GenerateTestTokenWithBearer(t *testing.T, secret, username, role string) string {
	return "Bearer " + GenerateTestToken(t, secret, username, role)
}
