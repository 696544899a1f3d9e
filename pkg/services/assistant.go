package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/audit"
	"github.com/cohortiq/cohort-engine/pkg/llm"
	"github.com/cohortiq/cohort-engine/pkg/logging"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/prompts"
	"github.com/cohortiq/cohort-engine/pkg/schema"
	"github.com/cohortiq/cohort-engine/pkg/session"
	"github.com/cohortiq/cohort-engine/pkg/sql"
)

// AssistantService turns open questions and cohort selections into SQL via
// one model completion per request. There is no retry and no multi-turn
// conversation: each request gets exactly one Complete call, and its outcome
// (including a parse failure) is the outcome of the request.
//
// The raw model text is returned alongside the parsed response so callers
// can surface it when parsing fails.
type AssistantService interface {
	AnswerOpenQuestion(ctx context.Context, ws *session.Workspace, schemaID, question string) (*models.QueryResponse, string, error)
	BuildCohort(ctx context.Context, ws *session.Workspace, schemaID string, selections []models.CohortSelection, clientIP string) (*models.QueryResponse, string, error)
}

type assistantService struct {
	client   llm.Client
	activity ActivityService
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(client llm.Client, activity ActivityService, auditor *audit.SecurityAuditor, logger *zap.Logger) AssistantService {
	return &assistantService{
		client:   client,
		activity: activity,
		auditor:  auditor,
		logger:   logger.Named("assistant-service"),
	}
}

var _ AssistantService = (*assistantService)(nil)

func (s *assistantService) AnswerOpenQuestion(ctx context.Context, ws *session.Workspace, schemaID, question string) (*models.QueryResponse, string, error) {
	def, err := schema.Get(schemaID)
	if err != nil {
		return nil, "", err
	}

	ws.SchemaID = schemaID
	ws.LastRequest = question
	if ws.MarkLogged(models.EventOpenQuestion) {
		s.activity.Record(ctx, usernameFromContext(ctx), models.EventOpenQuestion, question)
	}

	s.logger.Info("Open question submitted",
		zap.String("schema", schemaID),
		zap.Int("question_len", len(question)))

	prompt := prompts.BuildOpenQuestionPrompt(schemaID, schema.Describe(def), question)
	return s.complete(ctx, prompt, nil)
}

func (s *assistantService) BuildCohort(ctx context.Context, ws *session.Workspace, schemaID string, selections []models.CohortSelection, clientIP string) (*models.QueryResponse, string, error) {
	def, err := schema.Get(schemaID)
	if err != nil {
		return nil, "", err
	}

	// Unsafe filters warn and raise a security event but never abort: the
	// filter text only ever reaches the model as prose, not a database.
	var warnings []string
	for _, sel := range selections {
		if sel.Filter == "" {
			continue
		}
		check := sql.CheckFilter(sel.Filter)
		if check.Safe {
			continue
		}
		warnings = append(warnings,
			fmt.Sprintf("filter for table %q was flagged: %s", sel.Table, check.Reason))
		s.auditor.LogFilterInjectionAttempt(ctx, audit.FilterInjectionDetails{
			SchemaID:    schemaID,
			Fragment:    sel.Filter,
			Fingerprint: check.Fingerprint,
			Reason:      check.Reason,
		}, clientIP)
	}

	cohortDescription := prompts.ComposeCohortDescription(selections)

	ws.SchemaID = schemaID
	ws.Selections = selections
	if ws.MarkLogged(models.EventCohortBuild) {
		s.activity.Record(ctx, usernameFromContext(ctx), models.EventCohortBuild, cohortDescription)
	}

	s.logger.Info("Cohort build submitted",
		zap.String("schema", schemaID),
		zap.Int("selections", len(selections)),
		zap.Int("flagged_filters", len(warnings)))

	prompt := prompts.BuildCohortPrompt(schemaID, schema.Describe(def), cohortDescription)
	return s.complete(ctx, prompt, warnings)
}

// complete performs the single model call and parses its response. warnings
// collected before the call are carried onto the parsed result.
func (s *assistantService) complete(ctx context.Context, prompt string, warnings []string) (*models.QueryResponse, string, error) {
	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("Model completion failed",
			zap.String("error", logging.SanitizeError(err)))
		return nil, "", fmt.Errorf("failed to complete request: %w", err)
	}

	resp, err := llm.ParseQueryResponse(raw)
	if err != nil {
		// The request is spent: the raw text travels back for diagnosis,
		// but there is no re-ask.
		s.logger.Warn("Model response failed to parse",
			zap.Int("response_len", len(raw)),
			zap.Error(err))
		return nil, raw, err
	}

	resp.Warnings = append(warnings, sql.StatementWarnings(resp.SQL)...)
	return resp, raw, nil
}
