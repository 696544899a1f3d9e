package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/dispatch"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

func authenticatedContext(username string) context.Context {
	claims := &auth.Claims{Username: username, Role: models.RoleResearcher}
	return context.WithValue(context.Background(), auth.ClaimsKey, claims)
}

func TestTemplateService_Generate_Recognized(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewTemplateService(activity, zap.NewNop())
	ws := &session.Workspace{}

	bundle := svc.Generate(context.Background(), ws,
		"Determine the NUMBER OF Patients in the project")

	assert.Equal(t, dispatch.RulePatientCount, bundle.RuleID)
	assert.True(t, bundle.Recognized())
	assert.Contains(t, bundle.SQL, "COUNT(DISTINCT patient_num)")
	assert.Equal(t, "Determine the NUMBER OF Patients in the project", ws.LastRequest,
		"workspace keeps the request as typed, not normalized")
}

func TestTemplateService_Generate_Fallback(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewTemplateService(activity, zap.NewNop())
	ws := &session.Workspace{}

	bundle := svc.Generate(context.Background(), ws, "make me a sandwich")

	assert.Equal(t, models.RuleFallback, bundle.RuleID)
	assert.False(t, bundle.Recognized())
	assert.NotEmpty(t, bundle.SQL, "fallback still carries its sentinel SQL")
	// Fallback requests are activity too
	assert.Len(t, activity.ByType(models.EventTemplateQuery), 1)
}

func TestTemplateService_Generate_RecordsOncePerSession(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewTemplateService(activity, zap.NewNop())
	ws := &session.Workspace{}

	svc.Generate(context.Background(), ws, "Determine the number of patients in the project")
	svc.Generate(context.Background(), ws, "Show me all medications")

	events := activity.ByType(models.EventTemplateQuery)
	require.Len(t, events, 1, "one activity row per workspace, not per request")
	assert.Equal(t, "Determine the number of patients in the project", events[0].Detail)
}

func TestTemplateService_Generate_AnonymousUsername(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewTemplateService(activity, zap.NewNop())

	svc.Generate(context.Background(), &session.Workspace{}, "number of patients")

	events := activity.ByType(models.EventTemplateQuery)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Username)
}

func TestTemplateService_Generate_AuthenticatedUsername(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewTemplateService(activity, zap.NewNop())

	svc.Generate(authenticatedContext("alice"), &session.Workspace{}, "number of patients")

	events := activity.ByType(models.EventTemplateQuery)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Username)
}

func TestTemplateService_Catalog(t *testing.T) {
	svc := NewTemplateService(&recordingActivity{}, zap.NewNop())

	catalog := svc.Catalog()

	require.Len(t, catalog, 17)
	assert.Equal(t, dispatch.RulePatientCount, catalog[0].ID)
	for _, entry := range catalog {
		assert.NotEmpty(t, entry.Title)
		assert.NotEmpty(t, entry.Example)
	}
}
