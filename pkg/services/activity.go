package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/logging"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/repositories"
)

// ActivityService records usage events and lists them for the admin view.
type ActivityService interface {
	// Record appends one event row. It is best-effort: a storage failure is
	// logged but never propagated, so activity logging cannot break the
	// operation being recorded.
	Record(ctx context.Context, username, eventType, detail string)

	// ListRecent returns the newest events first.
	ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error)
}

type activityService struct {
	repo   repositories.ActivityRepository
	logger *zap.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo repositories.ActivityRepository, logger *zap.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.Named("activity-service"),
	}
}

var _ ActivityService = (*activityService)(nil)

func (s *activityService) Record(ctx context.Context, username, eventType, detail string) {
	event := &models.ActivityEvent{
		Username:  username,
		EventType: eventType,
		Detail:    logging.SanitizeSQL(detail),
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		s.logger.Error("Failed to record activity event",
			zap.String("event_type", eventType),
			zap.String("username", username),
			zap.Error(err))
	}
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	events, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list activity events", zap.Error(err))
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	return events, nil
}
