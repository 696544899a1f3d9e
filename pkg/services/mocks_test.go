package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

// mockUserRepo is a function-field mock for repositories.UserRepository.
type mockUserRepo struct {
	GetByUsernameFunc   func(ctx context.Context, username string) (*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) error
	UpdateLastLoginFunc func(ctx context.Context, userID uuid.UUID, at time.Time) error

	CreateCalls          int
	UpdateLastLoginCalls int
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	m.UpdateLastLoginCalls++
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, userID, at)
	}
	return nil
}

// mockActivityRepo is a function-field mock for repositories.ActivityRepository.
type mockActivityRepo struct {
	InsertFunc     func(ctx context.Context, event *models.ActivityEvent) error
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.ActivityEvent, error)

	mu       sync.Mutex
	Inserted []*models.ActivityEvent
}

func (m *mockActivityRepo) Insert(ctx context.Context, event *models.ActivityEvent) error {
	m.mu.Lock()
	m.Inserted = append(m.Inserted, event)
	m.mu.Unlock()
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, event)
	}
	return nil
}

func (m *mockActivityRepo) ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

// recordedEvent captures one ActivityService.Record call.
type recordedEvent struct {
	Username  string
	EventType string
	Detail    string
}

// recordingActivity is an in-memory ActivityService for asserting what the
// other services record.
type recordingActivity struct {
	mu     sync.Mutex
	Events []recordedEvent
}

func (r *recordingActivity) Record(_ context.Context, username, eventType, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, recordedEvent{Username: username, EventType: eventType, Detail: detail})
}

func (r *recordingActivity) ListRecent(context.Context, int) ([]*models.ActivityEvent, error) {
	return nil, nil
}

func (r *recordingActivity) ByType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
