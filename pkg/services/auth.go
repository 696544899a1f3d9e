package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/audit"
	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/config"
	"github.com/cohortiq/cohort-engine/pkg/crypto"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/repositories"
)

// AuthService authenticates local accounts and issues session tokens.
type AuthService interface {
	// Login verifies credentials and returns the account with a signed
	// session token. Unknown username, wrong password, and inactive account
	// all fail with apperrors.ErrInvalidCredentials so responses do not
	// reveal which check failed.
	Login(ctx context.Context, username, password, clientIP string) (*models.User, string, error)

	// Logout records the logout event. Cookie teardown is the handler's job.
	Logout(ctx context.Context, username string)

	// EnsureAdminUser creates the bootstrap admin account at startup if it
	// does not exist. A missing bootstrap password skips creation.
	EnsureAdminUser(ctx context.Context) error
}

type authService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	activity ActivityService
	auditor  *audit.SecurityAuditor
	cfg      *config.AuthConfig
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repositories.UserRepository,
	tokens *auth.TokenManager,
	activity ActivityService,
	auditor *audit.SecurityAuditor,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		activity: activity,
		auditor:  auditor,
		cfg:      cfg,
		logger:   logger.Named("auth-service"),
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Login(ctx context.Context, username, password, clientIP string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("Failed to look up user at login", zap.Error(err))
		}
		return s.loginFailed(ctx, username, "unknown user", clientIP)
	}

	if !user.Active {
		return s.loginFailed(ctx, username, "account inactive", clientIP)
	}

	if err := crypto.VerifyPassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, crypto.ErrHashMismatch) {
			s.logger.Error("Password verification failed abnormally",
				zap.String("username", user.Username),
				zap.Error(err))
		}
		return s.loginFailed(ctx, username, "wrong password", clientIP)
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// The login itself succeeded; losing the timestamp is not worth
		// failing it over.
		s.logger.Warn("Failed to stamp last login",
			zap.String("username", user.Username),
			zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.activity.Record(ctx, user.Username, models.EventLogin, "")
	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return user, token, nil
}

// loginFailed is the single failure path for Login: one activity row, one
// security event, and the uniform credentials error.
func (s *authService) loginFailed(ctx context.Context, username, reason, clientIP string) (*models.User, string, error) {
	s.activity.Record(ctx, username, models.EventLoginFailure, "")
	s.auditor.LogLoginFailure(ctx, username, reason, clientIP)
	return nil, "", apperrors.ErrInvalidCredentials
}

func (s *authService) Logout(ctx context.Context, username string) {
	s.activity.Record(ctx, username, models.EventLogout, "")
	s.logger.Info("User logged out", zap.String("username", username))
}

func (s *authService) EnsureAdminUser(ctx context.Context) error {
	if s.cfg.AdminPassword == "" {
		s.logger.Warn("No bootstrap admin password configured, skipping admin creation")
		return nil
	}

	_, err := s.users.GetByUsername(ctx, s.cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := crypto.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     s.cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// Another replica may have won the race.
		if errors.Is(err, apperrors.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Bootstrap admin user created", zap.String("username", admin.Username))
	return nil
}
