package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is one append-only log row. Events are never updated or
// deleted; Detail is free text that has already passed through the log
// sanitizer.
type ActivityEvent struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	EventType string    `json:"event_type"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity event types.
const (
	EventLogin         = "login"
	EventLoginFailure  = "login_failure"
	EventLogout        = "logout"
	EventTemplateQuery = "template_query"
	EventOpenQuestion  = "open_question"
	EventCohortBuild   = "cohort_build"
)
