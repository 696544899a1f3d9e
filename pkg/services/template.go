package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/dispatch"
	"github.com/cohortiq/cohort-engine/pkg/models"
	"github.com/cohortiq/cohort-engine/pkg/session"
)

// TemplateService resolves preset requests against the rule catalog. It is
// fully deterministic and never consults a model: unrecognized requests get
// the fallback bundle, not an error.
type TemplateService interface {
	// Generate maps a raw request to its result bundle and updates the
	// caller's workspace (last request, once-per-session activity row).
	Generate(ctx context.Context, ws *session.Workspace, rawRequest string) models.ResultBundle

	// Catalog returns the preset menu in dispatch priority order.
	Catalog() []dispatch.RuleInfo
}

type templateService struct {
	activity ActivityService
	logger   *zap.Logger
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(activity ActivityService, logger *zap.Logger) TemplateService {
	return &templateService{
		activity: activity,
		logger:   logger.Named("template-service"),
	}
}

var _ TemplateService = (*templateService)(nil)

func (s *templateService) Generate(ctx context.Context, ws *session.Workspace, rawRequest string) models.ResultBundle {
	normalized := dispatch.Normalize(rawRequest)
	bundle := dispatch.Dispatch(normalized)

	s.logger.Debug("Template request dispatched",
		zap.String("rule_id", bundle.RuleID),
		zap.Bool("recognized", bundle.Recognized()))

	ws.LastRequest = rawRequest
	if ws.MarkLogged(models.EventTemplateQuery) {
		s.activity.Record(ctx, usernameFromContext(ctx), models.EventTemplateQuery, rawRequest)
	}

	return bundle
}

func (s *templateService) Catalog() []dispatch.RuleInfo {
	return dispatch.Rules()
}

// usernameFromContext returns the authenticated username, or "" for
// anonymous callers. Template generation does not require a login.
func usernameFromContext(ctx context.Context) string {
	if claims, ok := auth.GetClaims(ctx); ok {
		return claims.Username
	}
	return ""
}
