package compliance

import (
	"context"
	"fmt"
	"time"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/service"
)

// LogEvent records a client reported event. Actions the pipeline records
// itself (spins, alerts, session boundaries) are refused.
func (s *serv) LogEvent(ctx context.Context, playerID string, action model.AuditAction, data map[string]any) error {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return err
	}

	switch action {
	case model.ActionFeatureUsed:
		feature, ok := data["feature"].(string)
		if !ok || feature == "" {
			return fmt.Errorf("%w: feature_used needs a feature name", service.ErrInvalidEvent)
		}
		p.audit.LogFeatureUsed(ctx, feature, data)
	case model.ActionSettingsChange:
		setting, ok := data["setting"].(string)
		if !ok || setting == "" {
			return fmt.Errorf("%w: settings_change needs a setting name", service.ErrInvalidEvent)
		}
		p.audit.LogSettingsChange(ctx, setting, data["oldValue"], data["newValue"])
	case model.ActionPageView:
		page, ok := data["page"].(string)
		if !ok || page == "" {
			return fmt.Errorf("%w: page_view needs a page", service.ErrInvalidEvent)
		}
		p.audit.LogPageView(ctx, page)
	case model.ActionBalanceChange:
		before, okBefore := intField(data, "previousBalance")
		after, okAfter := intField(data, "newBalance")
		if !okBefore || !okAfter {
			return fmt.Errorf("%w: balance_change needs previousBalance and newBalance", service.ErrInvalidEvent)
		}
		reason, _ := data["reason"].(string)
		p.audit.LogBalanceChange(ctx, before, after, reason)
	default:
		return fmt.Errorf("%w: action %q cannot be reported by clients", service.ErrInvalidEvent, action)
	}
	return nil
}

func intField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func (s *serv) RecentLogs(ctx context.Context, playerID string, limit int) ([]model.AuditLogEntry, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return p.audit.GetRecentLogs(ctx, limit)
}

func (s *serv) AnalyzeRTP(ctx context.Context, playerID string, timeframe time.Duration) (model.RTPAnalysis, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.RTPAnalysis{}, err
	}
	return p.audit.AnalyzeRTP(ctx, timeframe)
}

func (s *serv) ComplianceReport(ctx context.Context, playerID string) (model.ComplianceReport, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.ComplianceReport{}, err
	}
	return p.audit.GenerateComplianceReport(ctx)
}

func (s *serv) SessionMetrics(ctx context.Context, playerID string) (model.SessionMetrics, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.SessionMetrics{}, err
	}
	return p.audit.GetSessionMetrics(), nil
}
