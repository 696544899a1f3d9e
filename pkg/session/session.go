// Package session stores per-browser workspace state in a signed cookie.
//
// The workspace is an explicit value loaded per request and passed to the
// services that need it. There is no ambient global: two sessions never
// share state, and a request only sees what its own cookie carries.
package session

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/gorilla/sessions"

	"github.com/cohortiq/cohort-engine/pkg/models"
)

// SessionName is the name of the workspace cookie.
const SessionName = "cohort_workspace"

// workspaceKey is the value key holding the JSON-encoded workspace.
const workspaceKey = "workspace"

// workspaceTTL bounds the cookie lifetime in seconds. Matches the auth
// token TTL so the workspace and the login expire together.
const workspaceTTL = 86400

// Workspace is the per-session working state: the schema the user is
// browsing, their cohort selections, and which one-time activity events
// this session has already logged.
type Workspace struct {
	SchemaID     string                   `json:"schema_id,omitempty"`
	Selections   []models.CohortSelection `json:"selections,omitempty"`
	LastRequest  string                   `json:"last_request,omitempty"`
	LoggedEvents []string                 `json:"logged_events,omitempty"`
}

// MarkLogged records that an event type has been logged for this session.
// It returns true the first time a given event is marked and false on
// repeats, so callers can gate once-per-session activity rows:
//
//	if ws.MarkLogged(models.EventTemplateQuery) {
//	    activity.Record(...)
//	}
func (w *Workspace) MarkLogged(event string) bool {
	if slices.Contains(w.LoggedEvents, event) {
		return false
	}
	w.LoggedEvents = append(w.LoggedEvents, event)
	return true
}

// HasLogged reports whether an event type was already marked in this session.
func (w *Workspace) HasLogged(event string) bool {
	return slices.Contains(w.LoggedEvents, event)
}

// Manager loads and saves workspaces through a cookie-backed session store.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager builds a workspace manager.
//
// The secret signs session cookies. It can be any passphrase - it is
// SHA-256 hashed to derive a consistent 32-byte key, so it must be the
// same across restarts and replicas. secure controls the cookie's Secure
// flag and should be true everywhere except plain-HTTP local development.
func NewManager(secret string, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}

	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   workspaceTTL,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}

	return &Manager{store: store}, nil
}

// Load returns the request's workspace. A missing, corrupt, or re-keyed
// cookie yields a fresh empty workspace rather than an error: the only
// cost is losing the session's dedupe set.
func (m *Manager) Load(r *http.Request) *Workspace {
	sess, err := m.store.Get(r, SessionName)
	if err != nil {
		return &Workspace{}
	}

	raw, ok := sess.Values[workspaceKey].(string)
	if !ok || raw == "" {
		return &Workspace{}
	}

	var ws Workspace
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		return &Workspace{}
	}
	return &ws
}

// Save writes the workspace back into the session cookie. The workspace
// travels as a JSON string inside the session values, which keeps the
// store free of gob type registration.
func (m *Manager) Save(r *http.Request, w http.ResponseWriter, ws *Workspace) error {
	// Get returns a usable fresh session even when the inbound cookie
	// fails to decode, so the error can be ignored here.
	sess, _ := m.store.Get(r, SessionName)

	raw, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	sess.Values[workspaceKey] = string(raw)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save workspace session: %w", err)
	}
	return nil
}

// Clear expires the workspace cookie. Called on logout.
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	sess, _ := m.store.Get(r, SessionName)

	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear workspace session: %w", err)
	}
	return nil
}
