package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// mockAuthValidator implements auth.AuthService for handler tests. When err
// is nil the fixed claims pass validation, which lets tests drive the real
// middleware without minting tokens.
type mockAuthValidator struct {
	claims *auth.Claims
	token  string
	err    error
}

func (m *mockAuthValidator) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.claims, m.token, nil
}

func (m *mockAuthValidator) RequireRole(claims *auth.Claims, role string) error {
	if claims.Role == role || claims.Role == models.RoleAdmin {
		return nil
	}
	return auth.ErrInsufficientRole
}

// middlewareAs builds real auth middleware that authenticates every request
// as the given account.
func middlewareAs(username, role string) *auth.Middleware {
	validator := &mockAuthValidator{
		claims: &auth.Claims{Username: username, Role: role},
		token:  "test-token",
	}
	return auth.NewMiddleware(validator, zap.NewNop())
}

// anonymousMiddleware builds middleware that rejects every request.
func anonymousMiddleware() *auth.Middleware {
	validator := &mockAuthValidator{err: auth.ErrMissingAuthorization}
	return auth.NewMiddleware(validator, zap.NewNop())
}

// newTestSessionManager builds a workspace session manager with a fixed
// test secret and the Secure flag off, matching plain-HTTP test requests.
func newTestSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager("test-session-secret", false)
	if err != nil {
		t.Fatalf("failed to build session manager: %v", err)
	}
	return mgr
}

// unmarshalData re-decodes the Data field of an envelope into a typed value.
func unmarshalData(t *testing.T, response ApiResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(response.Data)
	if err != nil {
		t.Fatalf("failed to re-encode data field: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode data field: %v", err)
	}
}

// mockAssistantService is a configurable mock for assistant handler tests.
type mockAssistantService struct {
	resp *models.QueryResponse
	raw  string
	err  error

	questionCalls  int
	cohortCalls    int
	lastSchema     string
	lastQuestion   string
	lastSelections []models.CohortSelection
	lastClientIP   string
}

func (m *mockAssistantService) AnswerOpenQuestion(ctx context.Context, ws *session.Workspace, schemaID, question string) (*models.QueryResponse, string, error) {
	m.questionCalls++
	m.lastSchema = schemaID
	m.lastQuestion = question
	if m.err != nil {
		return nil, m.raw, m.err
	}
	return m.resp, m.raw, nil
}

func (m *mockAssistantService) BuildCohort(ctx context.Context, ws *session.Workspace, schemaID string, selections []models.CohortSelection, clientIP string) (*models.QueryResponse, string, error) {
	m.cohortCalls++
	m.lastSchema = schemaID
	m.lastSelections = selections
	m.lastClientIP = clientIP
	if m.err != nil {
		return nil, m.raw, m.err
	}
	return m.resp, m.raw, nil
}

// mockActivityService is a configurable mock for activity handler tests.
type mockActivityService struct {
	events  []*models.ActivityEvent
	listErr error

	lastLimit int
	recorded  []string
}

func (m *mockActivityService) Record(ctx context.Context, username, eventType, detail string) {
	m.recorded = append(m.recorded, eventType)
}

func (m *mockActivityService) ListRecent(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.events, nil
}

// mockLoginService implements services.AuthService for auth handler tests.
type mockLoginService struct {
	user  *models.User
	token string
	err   error

	logoutCalls []string
}

func (m *mockLoginService) Login(ctx context.Context, username, password, clientIP string) (*models.User, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *mockLoginService) Logout(ctx context.Context, username string) {
	m.logoutCalls = append(m.logoutCalls, username)
}

func (m *mockLoginService) EnsureAdminUser(ctx context.Context) error {
	return nil
}
