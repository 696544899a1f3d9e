package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cohortiq/cohort-engine/pkg/database"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

// defaultActivityLimit bounds ListRecent when the caller does not.
const defaultActivityLimit = 50

// ActivityRepository defines the interface for the append-only usage log.
// Rows are only ever inserted and listed; there is no update or delete path.
type ActivityRepository interface {
	Insert(ctx context.Context, event *models.ActivityEvent) error
	ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error)
}

// activityRepository implements ActivityRepository using PostgreSQL.
type activityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *database.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Insert appends one event row.
func (r *activityRepository) Insert(ctx context.Context, event *models.ActivityEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (id, username, event_type, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Username,
		event.EventType,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}

	return nil
}

// ListRecent returns the newest events first. A non-positive limit falls back
// to the default page size.
func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	query := `
		SELECT id, username, event_type, detail, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var events []*models.ActivityEvent
	for rows.Next() {
		var event models.ActivityEvent
		err := rows.Scan(
			&event.ID,
			&event.Username,
			&event.EventType,
			&event.Detail,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity events: %w", err)
	}

	return events, nil
}

// Ensure activityRepository implements ActivityRepository at compile time.
var _ ActivityRepository = (*activityRepository)(nil)
