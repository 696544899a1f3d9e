// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a cohort filter fragment.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventLoginFailure is logged when a login attempt fails.
	EventLoginFailure SecurityEventType = "login_failure"
	// EventAccessDenied is logged when an authenticated request fails a role check.
	EventAccessDenied SecurityEventType = "access_denied"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Username  string            `json:"username,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// FilterInjectionDetails contains specifics of a flagged cohort filter fragment.
type FilterInjectionDetails struct {
	SchemaID    string `json:"schema_id"`
	Fragment    string `json:"fragment"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
	Reason      string `json:"reason"`
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
// The logger is automatically configured with "security_audit" namespace for easy
// filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	// Create a child logger with security-specific namespace for SIEM parsing
	securityLogger := logger.Named("security_audit")
	return &SecurityAuditor{logger: securityLogger}
}

// LogFilterInjectionAttempt records a cohort filter fragment that libinjection
// flagged. The request itself proceeds (generated SQL is never executed, so the
// fragment is advisory text), but the attempt is logged at ERROR level with
// "critical" severity for alerting.
//
// The context is used to extract user identity from JWT claims if available.
// Client IP should be extracted from the HTTP request (typically r.RemoteAddr).
func (a *SecurityAuditor) LogFilterInjectionAttempt(
	ctx context.Context,
	details FilterInjectionDetails,
	clientIP string,
) {
	// Extract user identity from context if available
	userID := auth.GetUserIDFromContext(ctx)
	username := auth.GetUsernameFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventSQLInjectionAttempt,
		UserID:    userID,
		Username:  username,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "critical",
	}

	// Serialize event to JSON for SIEM ingestion
	// Ignoring error as marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	// Log at ERROR level to ensure visibility in monitoring systems
	a.logger.Error("SQL injection attempt detected in cohort filter",
		zap.String("event_json", string(eventJSON)),
		zap.String("schema_id", details.SchemaID),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("user_id", userID),
		zap.String("username", username),
		zap.String("severity", "critical"),
	)
}

// LogLoginFailure records a failed login attempt.
// This is logged at WARN level; repeated failures for one account are the
// SIEM's signal for brute forcing.
func (a *SecurityAuditor) LogLoginFailure(
	ctx context.Context,
	username string,
	reason string,
	clientIP string,
) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventLoginFailure,
		Username:  username,
		ClientIP:  clientIP,
		Details: map[string]string{
			"reason": reason,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Login failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("username", username),
		zap.String("reason", reason),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

// LogAccessDenied records an authenticated request that failed a role check.
// This is logged at WARN level as these are typically misconfigured clients,
// not attacks.
func (a *SecurityAuditor) LogAccessDenied(
	ctx context.Context,
	path string,
	requiredRole string,
	clientIP string,
) {
	userID := auth.GetUserIDFromContext(ctx)
	username := auth.GetUsernameFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAccessDenied,
		UserID:    userID,
		Username:  username,
		ClientIP:  clientIP,
		Details: map[string]string{
			"path":          path,
			"required_role": requiredRole,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Access denied",
		zap.String("event_json", string(eventJSON)),
		zap.String("path", path),
		zap.String("required_role", requiredRole),
		zap.String("client_ip", clientIP),
		zap.String("user_id", userID),
		zap.String("username", username),
		zap.String("severity", "warning"),
	)
}
