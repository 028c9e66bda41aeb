package converter

import (
	"zodiac_backend/internal/api/dto/gaming"
	"zodiac_backend/internal/model"
	gamingService "zodiac_backend/internal/service/gaming"
)

func ToSpinAttempt(req gaming.SpinRequest) model.SpinAttempt {
	return model.SpinAttempt{
		Bet:            req.Bet,
		Won:            req.Won,
		WinAmount:      req.WinAmount,
		BalanceBefore:  req.BalanceBefore,
		BalanceAfter:   req.BalanceAfter,
		Symbols:        req.Symbols,
		Multiplier:     req.Multiplier,
		FreeSpin:       req.FreeSpin,
		ConfirmationID: req.ConfirmationID,
	}
}

func ToSpinResponse(o model.SpinOutcome) gaming.SpinResponse {
	return gaming.SpinResponse{
		Allowed:      o.Allowed,
		Reason:       string(o.Decision.Reason),
		RetryAfterMs: o.Decision.RetryAfter.Milliseconds(),
		Metrics:      ToBehaviorMetricsResponse(o.Metrics),
		Alerts:       ToGameAlertsResponse(o.Alerts),
	}
}

func ToConfirmationResponse(c model.HighBetConfirmation) gaming.ConfirmationResponse {
	return gaming.ConfirmationResponse{
		ID:        c.ID,
		Amount:    c.Amount,
		Required:  c.Required,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func ToStateResponse(s model.ResponsibleGamingState) gaming.StateResponse {
	res := gaming.StateResponse{
		SessionStartTime:   s.SessionStartTime,
		TotalSessionTime:   s.TotalSessionTime,
		DailySpinCount:     s.DailySpinCount,
		DailyCoinsSpent:    s.DailyCoinsSpent,
		ContinuousPlayTime: s.ContinuousPlayTime,
		WarningLevel:       s.WarningLevel,
		MandatoryBreak:     s.MandatoryBreak,
		LastDailyReset:     s.LastDailyReset,
	}
	if !s.LastSpinTime.IsZero() {
		last := s.LastSpinTime
		res.LastSpinTime = &last
	}
	if s.MandatoryBreak && !s.BreakStartedAt.IsZero() {
		ends := s.BreakStartedAt.Add(gamingService.BreakDuration)
		res.BreakEndsAt = &ends
	}
	return res
}

func ToGameAlertResponse(a model.GameAlert) gaming.AlertResponse {
	return gaming.AlertResponse{
		ID:         a.ID,
		Type:       string(a.Type),
		Title:      a.Title,
		Message:    a.Message,
		DurationMs: a.Duration.Milliseconds(),
		Timestamp:  a.Timestamp,
		CanDismiss: a.CanDismiss,
	}
}

func ToGameAlertsResponse(alerts []model.GameAlert) []gaming.AlertResponse {
	result := make([]gaming.AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = ToGameAlertResponse(a)
	}
	return result
}
