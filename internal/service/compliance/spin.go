package compliance

import (
	"context"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/service/gaming"
)

// RecordSpinAttempt runs one spin through the pipeline in order: high bet
// confirmation, the gate, the behavior monitor, the audit trail.
func (s *serv) RecordSpinAttempt(ctx context.Context, playerID string, attempt model.SpinAttempt) (model.SpinOutcome, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.SpinOutcome{}, err
	}

	if attempt.Bet > gaming.HighBetThreshold {
		if attempt.ConfirmationID == "" {
			return s.deny(ctx, p, attempt, model.SpinDecision{Reason: model.DenyConfirmationRequired}), nil
		}
		if err := p.gaming.ConsumeConfirmation(attempt.ConfirmationID, attempt.Bet); err != nil {
			return s.deny(ctx, p, attempt, model.SpinDecision{Reason: model.DenyConfirmationRequired}), nil
		}
	}

	decision := p.gaming.CheckSpin(ctx, attempt.Bet)
	if !decision.Allowed {
		return s.deny(ctx, p, attempt, decision), nil
	}

	winAmount := attempt.WinAmount
	if !attempt.Won {
		winAmount = 0
	}
	p.behavior.RecordSpin(attempt.Bet, attempt.Won, winAmount)

	p.audit.LogSpin(ctx, model.SpinLog{
		Bet:          attempt.Bet,
		Win:          winAmount,
		BalanceAfter: attempt.BalanceAfter,
		Symbols:      attempt.Symbols,
		Multiplier:   attempt.Multiplier,
		FreeSpin:     attempt.FreeSpin,
	})
	if attempt.BalanceAfter != attempt.BalanceBefore {
		p.audit.LogBalanceChange(ctx, attempt.BalanceBefore, attempt.BalanceAfter, "spin")
	}

	return model.SpinOutcome{
		Allowed:  true,
		Decision: decision,
		Metrics:  p.behavior.GetMetrics(),
		Alerts:   p.gaming.GetAlerts(),
	}, nil
}

func (s *serv) deny(ctx context.Context, p *pipeline, attempt model.SpinAttempt, decision model.SpinDecision) model.SpinOutcome {
	p.audit.LogSpinDenied(ctx, attempt.Bet, decision.Reason)
	return model.SpinOutcome{
		Allowed:  false,
		Decision: decision,
		Metrics:  p.behavior.GetMetrics(),
		Alerts:   p.gaming.GetAlerts(),
	}
}
