//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/testhelpers"
)

// userTestContext holds test dependencies for user repository tests.
type userTestContext struct {
	t        *testing.T
	engineDB *testhelpers.EngineDB
	repo     UserRepository
}

// setupUserTest initializes the test context with the shared testcontainer.
func setupUserTest(t *testing.T) *userTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	tc := &userTestContext{
		t:        t,
		engineDB: engineDB,
		repo:     NewUserRepository(engineDB.DB),
	}
	tc.cleanup()
	t.Cleanup(tc.cleanup)
	return tc
}

// cleanup removes rows created by this test file.
func (tc *userTestContext) cleanup() {
	tc.t.Helper()
	ctx := context.Background()
	_, _ = tc.engineDB.DB.Exec(ctx, "DELETE FROM users WHERE username LIKE 'repo_user_%'")
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	tc := setupUserTest(t)
	ctx := context.Background()

	user := &models.User{
		Username:     "  Repo_User_Alice ",
		PasswordHash: "$2a$10$notarealhash",
		Role:         models.RoleResearcher,
		Active:       true,
	}

	if err := tc.repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("Create should assign an ID")
	}
	if user.Username != "repo_user_alice" {
		t.Errorf("Create should normalize username, got %q", user.Username)
	}

	// Lookup is case-insensitive
	retrieved, err := tc.repo.GetByUsername(ctx, "REPO_USER_ALICE")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("expected ID %s, got %s", user.ID, retrieved.ID)
	}
	if retrieved.PasswordHash != user.PasswordHash {
		t.Error("password hash should round-trip")
	}
	if retrieved.Role != models.RoleResearcher {
		t.Errorf("expected role researcher, got %q", retrieved.Role)
	}
	if !retrieved.Active {
		t.Error("expected user to be active")
	}
	if retrieved.LastLoginAt != nil {
		t.Error("last login should be nil before first login")
	}
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	tc := setupUserTest(t)
	ctx := context.Background()

	first := &models.User{
		Username:     "repo_user_bob",
		PasswordHash: "$2a$10$notarealhash",
		Role:         models.RoleResearcher,
		Active:       true,
	}
	if err := tc.repo.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same username with different case is still a duplicate
	second := &models.User{
		Username:     "Repo_User_BOB",
		PasswordHash: "$2a$10$otherhash",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	err := tc.repo.Create(ctx, second)
	if !errors.Is(err, apperrors.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	tc := setupUserTest(t)
	ctx := context.Background()

	_, err := tc.repo.GetByUsername(ctx, "repo_user_nobody")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	tc := setupUserTest(t)
	ctx := context.Background()

	user := &models.User{
		Username:     "repo_user_carol",
		PasswordHash: "$2a$10$notarealhash",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := tc.repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loginTime := time.Now().UTC().Truncate(time.Microsecond)
	if err := tc.repo.UpdateLastLogin(ctx, user.ID, loginTime); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}

	retrieved, err := tc.repo.GetByUsername(ctx, "repo_user_carol")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if retrieved.LastLoginAt == nil {
		t.Fatal("last login should be set")
	}
	if diff := retrieved.LastLoginAt.Sub(loginTime); diff > time.Second || diff < -time.Second {
		t.Errorf("last login %v too far from %v", retrieved.LastLoginAt, loginTime)
	}
}

func TestUserRepository_UpdateLastLogin_UnknownUser(t *testing.T) {
	tc := setupUserTest(t)
	ctx := context.Background()

	err := tc.repo.UpdateLastLogin(ctx, uuid.New(), time.Now())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
