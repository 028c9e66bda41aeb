package service

import (
	"context"
	"time"

	"zodiac_backend/internal/model"
)

// ComplianceService is the per-player compliance pipeline: the behavior
// monitor, the responsible gaming gate and the audit trail.
type ComplianceService interface {
	OpenSession(ctx context.Context, playerID, sessionID string, device *model.DeviceInfo) (string, error)
	EndSession(ctx context.Context, playerID string) (model.SessionMetrics, error)
	Close(ctx context.Context)

	RecordSpinAttempt(ctx context.Context, playerID string, attempt model.SpinAttempt) (model.SpinOutcome, error)
	RequestConfirmation(ctx context.Context, playerID string, amount int) (model.HighBetConfirmation, error)
	ResolveConfirmation(ctx context.Context, playerID, id string, approved bool) (model.HighBetConfirmation, error)

	GamingState(ctx context.Context, playerID string) (model.ResponsibleGamingState, error)
	GamingAlerts(ctx context.Context, playerID string) ([]model.GameAlert, error)
	DismissAlert(ctx context.Context, playerID, alertID string) error
	TakeMandatoryBreak(ctx context.Context, playerID string) (model.ResponsibleGamingState, error)

	BehaviorMetrics(ctx context.Context, playerID string) (model.BehaviorMetrics, error)
	BehaviorAlerts(ctx context.Context, playerID string) ([]model.BehaviorAlert, error)
	BehaviorAudit(ctx context.Context, playerID string) (model.BehaviorAuditData, error)
	ResetBehavior(ctx context.Context, playerID string) error

	LogEvent(ctx context.Context, playerID string, action model.AuditAction, data map[string]any) error
	RecentLogs(ctx context.Context, playerID string, limit int) ([]model.AuditLogEntry, error)
	AnalyzeRTP(ctx context.Context, playerID string, timeframe time.Duration) (model.RTPAnalysis, error)
	ComplianceReport(ctx context.Context, playerID string) (model.ComplianceReport, error)
	SessionMetrics(ctx context.Context, playerID string) (model.SessionMetrics, error)

	SubscribeAlerts(playerID string) (<-chan model.AlertEvent, func())
}

type IdentityService interface {
	// StartSession resolves the anonymous player of deviceID, creating it on
	// first contact, and issues an access token for a new play session.
	StartSession(ctx context.Context, deviceID string, device model.DeviceInfo) (*model.PlaySession, error)
}
