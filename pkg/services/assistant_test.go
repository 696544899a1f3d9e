package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/audit"
	"github.com/cohortiq/cohort-engine/pkg/llm"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/schema"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

type assistantTestContext struct {
	client    *llm.MockClient
	activity  *recordingActivity
	auditLogs *observer.ObservedLogs
	svc       AssistantService
}

func setupAssistantTest() *assistantTestContext {
	core, logs := observer.New(zapcore.WarnLevel)
	tc := &assistantTestContext{
		client:    llm.NewMockClient(),
		activity:  &recordingActivity{},
		auditLogs: logs,
	}
	tc.svc = NewAssistantService(tc.client, tc.activity,
		audit.NewSecurityAuditor(zap.New(core)), zap.NewNop())
	return tc
}

// goodModelResponse wraps sqlText in the prose-plus-fenced-block shape real
// models return.
func goodModelResponse(sqlText string) string {
	return fmt.Sprintf("Here is the query you asked for.\n\n"+
		"```json\n"+
		"{\n"+
		"  \"sql\": %q,\n"+
		"  \"input_tables\": {\"patient_dimension\": [{\"patient_num\": 1}]},\n"+
		"  \"output_table\": [{\"patient_count\": 42}],\n"+
		"  \"explanation\": \"Counts distinct patients.\",\n"+
		"  \"r_query\": \"dbGetQuery(con, 'SELECT 1')\"\n"+
		"}\n"+
		"```\n\nLet me know if you need refinements.\n", sqlText)
}

func TestAssistantService_AnswerOpenQuestion_Success(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("SELECT COUNT(DISTINCT patient_num) FROM patient_dimension"), nil
	}
	ws := &session.Workspace{}

	resp, raw, err := tc.svc.AnswerOpenQuestion(context.Background(), ws,
		schema.I2B2, "How many patients are there?")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "SELECT COUNT(DISTINCT patient_num) FROM patient_dimension", resp.SQL)
	assert.Equal(t, "Counts distinct patients.", resp.Explanation)
	assert.Empty(t, resp.Warnings)
	assert.Contains(t, raw, "```json")

	assert.Equal(t, 1, tc.client.CompleteCalls)
	require.Len(t, tc.client.Prompts, 1)
	assert.Contains(t, tc.client.Prompts[0], `"How many patients are there?"`)
	assert.Contains(t, tc.client.Prompts[0], "patient_dimension")

	assert.Equal(t, schema.I2B2, ws.SchemaID)
	assert.Equal(t, "How many patients are there?", ws.LastRequest)
}

func TestAssistantService_AnswerOpenQuestion_UnknownSchema(t *testing.T) {
	tc := setupAssistantTest()
	ws := &session.Workspace{}

	resp, raw, err := tc.svc.AnswerOpenQuestion(context.Background(), ws,
		"mimic-iv", "How many patients are there?")

	require.ErrorIs(t, err, apperrors.ErrUnknownSchema)
	assert.Nil(t, resp)
	assert.Empty(t, raw)
	assert.Zero(t, tc.client.CompleteCalls, "no model call for an unknown schema")
	assert.Empty(t, ws.SchemaID, "workspace untouched on validation failure")
}

func TestAssistantService_AnswerOpenQuestion_CompletionError(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}

	resp, raw, err := tc.svc.AnswerOpenQuestion(context.Background(),
		&session.Workspace{}, schema.I2B2, "How many patients?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to complete request")
	assert.Nil(t, resp)
	assert.Empty(t, raw)
	assert.Equal(t, 1, tc.client.CompleteCalls, "a failed call is not retried")
}

func TestAssistantService_AnswerOpenQuestion_NoJSONBlock(t *testing.T) {
	tc := setupAssistantTest()
	modelText := "I'm sorry, I can't produce SQL for that request."
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return modelText, nil
	}

	resp, raw, err := tc.svc.AnswerOpenQuestion(context.Background(),
		&session.Workspace{}, schema.I2B2, "How many patients?")

	require.ErrorIs(t, err, apperrors.ErrNoJSONBlock)
	assert.Nil(t, resp)
	assert.Equal(t, modelText, raw, "raw text travels back for diagnosis")
	assert.Equal(t, 1, tc.client.CompleteCalls, "a parse failure is not re-asked")
}

func TestAssistantService_AnswerOpenQuestion_MissingSQLField(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return "```json\n{\"explanation\": \"no query needed\"}\n```", nil
	}

	resp, raw, err := tc.svc.AnswerOpenQuestion(context.Background(),
		&session.Workspace{}, schema.I2B2, "How many patients?")

	require.ErrorIs(t, err, apperrors.ErrMissingSQLField)
	assert.Nil(t, resp)
	assert.NotEmpty(t, raw)
}

func TestAssistantService_AnswerOpenQuestion_MultiStatementWarning(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("CREATE TABLE tmp AS SELECT 1; SELECT * FROM tmp;"), nil
	}

	resp, _, err := tc.svc.AnswerOpenQuestion(context.Background(),
		&session.Workspace{}, schema.I2B2, "Save then show a temp table")

	require.NoError(t, err)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "multiple statements")
}

func TestAssistantService_AnswerOpenQuestion_RecordsOncePerSession(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("SELECT 1"), nil
	}
	ws := &session.Workspace{}
	ctx := authenticatedContext("alice")

	_, _, err := tc.svc.AnswerOpenQuestion(ctx, ws, schema.I2B2, "first question")
	require.NoError(t, err)
	_, _, err = tc.svc.AnswerOpenQuestion(ctx, ws, schema.OMOP, "second question")
	require.NoError(t, err)

	events := tc.activity.ByType(models.EventOpenQuestion)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Username)
	assert.Equal(t, "first question", events[0].Detail)
}

func TestAssistantService_BuildCohort_Success(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("SELECT person_id, year_of_birth FROM person"), nil
	}
	ws := &session.Workspace{}
	selections := []models.CohortSelection{
		{Table: "person", Columns: []string{"person_id", "year_of_birth"}},
		{Table: "condition_occurrence", Columns: []string{"condition_concept_id"},
			Filter: "diagnosed diabetics only"},
	}

	resp, _, err := tc.svc.BuildCohort(context.Background(), ws,
		schema.OMOP, selections, "10.0.0.7")

	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, 1, tc.client.CompleteCalls)

	require.Len(t, tc.client.Prompts, 1)
	prompt := tc.client.Prompts[0]
	assert.Contains(t, prompt, "Table `person`: columns [person_id, year_of_birth]")
	assert.Contains(t, prompt, "filtered by `diagnosed diabetics only`")

	assert.Equal(t, schema.OMOP, ws.SchemaID)
	assert.Equal(t, selections, ws.Selections)
	assert.Zero(t, tc.auditLogs.Len())
}

func TestAssistantService_BuildCohort_UnsafeFilterProceedsWithWarning(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("SELECT patient_num FROM patient_dimension"), nil
	}
	selections := []models.CohortSelection{
		{Table: "patient_dimension", Columns: []string{"patient_num"},
			Filter: "sex_cd = 'F'; DROP TABLE patient_dimension"},
	}

	resp, _, err := tc.svc.BuildCohort(context.Background(), &session.Workspace{},
		schema.I2B2, selections, "203.0.113.9")

	require.NoError(t, err, "flagged filters warn, they do not abort")
	assert.Equal(t, 1, tc.client.CompleteCalls, "the prompt is still sent")

	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], `filter for table "patient_dimension" was flagged`)

	entries := tc.auditLogs.FilterMessage("SQL injection attempt detected in cohort filter").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "203.0.113.9", entries[0].ContextMap()["client_ip"])
}

func TestAssistantService_BuildCohort_UnknownSchema(t *testing.T) {
	tc := setupAssistantTest()

	resp, _, err := tc.svc.BuildCohort(context.Background(), &session.Workspace{},
		"", nil, "")

	require.ErrorIs(t, err, apperrors.ErrUnknownSchema)
	assert.Nil(t, resp)
	assert.Zero(t, tc.client.CompleteCalls)
}

func TestAssistantService_BuildCohort_RecordsComposedDescription(t *testing.T) {
	tc := setupAssistantTest()
	tc.client.CompleteFunc = func(context.Context, string) (string, error) {
		return goodModelResponse("SELECT 1"), nil
	}
	selections := []models.CohortSelection{
		{Table: "person", Columns: []string{"person_id"}},
	}

	_, _, err := tc.svc.BuildCohort(authenticatedContext("bob"), &session.Workspace{},
		schema.OMOP, selections, "")
	require.NoError(t, err)

	events := tc.activity.ByType(models.EventCohortBuild)
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].Username)
	assert.Contains(t, events[0].Detail, "Table `person`")
}
