package gaming

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

// OnSpin is the spin gate: it reports whether a spin costing coinsSpent may
// go ahead and, if so, books it.
func (m *Manager) OnSpin(ctx context.Context, coinsSpent int) bool {
	return m.CheckSpin(ctx, coinsSpent).Allowed
}

// CheckSpin is OnSpin with the reason for a denial.
func (m *Manager) CheckSpin(ctx context.Context, coinsSpent int) model.SpinDecision {
	m.mtx.Lock()
	now := m.clock.Now()
	notify := m.resetDailyLocked(now)

	decision := m.gateLocked(now, coinsSpent)
	if decision.Allowed {
		m.acceptSpinLocked(now, coinsSpent)
		notify = notify || m.state.DailySpinCount%reminderEvery == 0
	} else if decision.Reason == model.DenyDailyLimit && !m.hasAlertLocked(alertDailyLimit) {
		m.upsertAlertLocked(dailyLimitAlert(m.cfg.DailyLimit(), now))
		m.state.WarningLevel = model.WarningLevelMandatory
		notify = true
	}

	if decision.Allowed || notify {
		m.saveLocked(ctx)
	}
	alerts := m.alertsLocked(now)
	m.mtx.Unlock()

	result := "allowed"
	if !decision.Allowed {
		result = string(decision.Reason)
		m.logger.Debug("spin denied", zap.String("reason", result), zap.Int("coins", coinsSpent))
	}
	m.metrics.SpinDecision(result)

	if notify {
		m.dispatch(alerts)
	}
	return decision
}

func (m *Manager) gateLocked(now time.Time, coinsSpent int) model.SpinDecision {
	if m.state.MandatoryBreak {
		return model.SpinDecision{
			Reason:     model.DenyMandatoryBreak,
			RetryAfter: max(m.state.BreakStartedAt.Add(BreakDuration).Sub(now), 0),
		}
	}

	if m.state.DailyCoinsSpent+coinsSpent > m.cfg.DailyLimit() {
		return model.SpinDecision{Reason: model.DenyDailyLimit}
	}

	if cooldown := m.cfg.Cooldown(); cooldown > 0 && !m.state.LastSpinTime.IsZero() {
		if elapsed := now.Sub(m.state.LastSpinTime); elapsed < cooldown {
			return model.SpinDecision{Reason: model.DenyCooldown, RetryAfter: cooldown - elapsed}
		}
	}

	return model.SpinDecision{Allowed: true}
}

func (m *Manager) acceptSpinLocked(now time.Time, coinsSpent int) {
	m.state.DailySpinCount++
	m.state.DailyCoinsSpent += coinsSpent
	m.state.LastSpinTime = now

	m.recentSpins = append(m.recentSpins, now)
	m.pruneRecentSpinsLocked(now)

	if m.state.DailySpinCount%reminderEvery == 0 {
		m.upsertAlertLocked(reminderAlert(m.state.DailySpinCount, now))
	}
}

func (m *Manager) pruneRecentSpinsLocked(now time.Time) {
	cutoff := now.Add(-spinRateWindow)
	i := 0
	for i < len(m.recentSpins) && m.recentSpins[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		m.recentSpins = append([]time.Time(nil), m.recentSpins[i:]...)
	}
}
