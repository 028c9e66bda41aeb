package converter

import (
	"zodiac_backend/internal/api/dto/behavior"
	"zodiac_backend/internal/model"
)

func ToBehaviorMetricsResponse(m model.BehaviorMetrics) behavior.MetricsResponse {
	return behavior.MetricsResponse{
		SpinsPerMinute:     m.SpinsPerMinute,
		AvgBetSize:         m.AvgBetSize,
		SessionDurationSec: int64(m.SessionDuration.Seconds()),
		WinLossRatio:       m.WinLossRatio,
		RepetitivePattern:  m.RepetitivePattern,
		RapidBetting:       m.RapidBetting,
		LastUpdate:         m.LastUpdate,
	}
}

func ToBehaviorAlertResponse(a model.BehaviorAlert) behavior.AlertResponse {
	return behavior.AlertResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		Severity:  string(a.Severity),
		Message:   a.Message,
		Timestamp: a.Timestamp,
		Metrics:   ToBehaviorMetricsResponse(a.Metrics),
	}
}

func ToBehaviorAlertsResponse(alerts []model.BehaviorAlert) []behavior.AlertResponse {
	result := make([]behavior.AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = ToBehaviorAlertResponse(a)
	}
	return result
}

func ToBehaviorAuditResponse(d model.BehaviorAuditData) behavior.AuditResponse {
	return behavior.AuditResponse{
		SessionStart: d.SessionStart,
		SpinCount:    d.SpinCount,
		Metrics:      ToBehaviorMetricsResponse(d.Metrics),
		Alerts:       ToBehaviorAlertsResponse(d.Alerts),
	}
}
