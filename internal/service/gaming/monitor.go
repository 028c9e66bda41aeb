package gaming

import (
	"context"
	"slices"
	"time"

	"zodiac_backend/internal/model"
)

// MonitorTick is the once-a-minute re-evaluation of continuous play, session
// time and the threshold alerts.
func (m *Manager) MonitorTick(ctx context.Context) {
	m.mtx.Lock()
	now := m.clock.Now()
	before := len(m.alerts)
	notify := m.resetDailyLocked(now)

	m.updatePlayTimeLocked(now)
	notify = m.checkContinuousPlayLocked(now) || notify
	notify = m.checkDailySpendLocked(now) || notify
	notify = m.checkSpinRateLocked(now) || notify

	m.saveLocked(ctx)
	alerts := m.alertsLocked(now)
	notify = notify || len(alerts) != before
	m.mtx.Unlock()

	if notify {
		m.dispatch(alerts)
	}
}

func (m *Manager) updatePlayTimeLocked(now time.Time) {
	switch {
	case m.state.MandatoryBreak:
		m.state.ContinuousPlayTime = 0
	case !m.state.LastSpinTime.IsZero() && now.Sub(m.state.LastSpinTime) <= continuousGap:
		m.state.ContinuousPlayTime++
	default:
		m.state.ContinuousPlayTime = 0
	}
	m.state.TotalSessionTime = int(now.Sub(m.state.SessionStartTime).Minutes())
}

// checkContinuousPlayLocked Предупреждения на отметках alertIntervals,
// на maxContinuousMinutes включается обязательный перерыв
func (m *Manager) checkContinuousPlayLocked(now time.Time) bool {
	played := m.state.ContinuousPlayTime
	if played == 0 || m.state.MandatoryBreak {
		return false
	}

	if maxMinutes := m.cfg.MaxContinuousMinutes(); maxMinutes > 0 && played >= maxMinutes {
		m.state.WarningLevel = model.WarningLevelMandatory
		m.startBreakLocked(now, breakRequiredAlert(played, now))
		return true
	}

	if slices.Contains(m.cfg.AlertIntervals(), played) {
		m.upsertAlertLocked(continuousPlayAlert(played, now))
		m.state.WarningLevel = max(m.state.WarningLevel, model.WarningLevelWarning)
		return true
	}
	return false
}

func (m *Manager) checkDailySpendLocked(now time.Time) bool {
	limit := m.cfg.DailyLimit()
	if limit <= 0 || m.state.DailyWarningIssued {
		return false
	}
	if float64(m.state.DailyCoinsSpent) < m.cfg.DailyLimitWarning()*float64(limit) {
		return false
	}

	m.upsertAlertLocked(dailyLimitWarningAlert(m.state.DailyCoinsSpent, limit, now))
	m.state.DailyWarningIssued = true
	m.state.WarningLevel = max(m.state.WarningLevel, model.WarningLevelWarning)
	return true
}

func (m *Manager) checkSpinRateLocked(now time.Time) bool {
	m.pruneRecentSpinsLocked(now)
	limit := m.cfg.MaxSpinsPer30Min()
	if limit <= 0 || len(m.recentSpins) <= limit || m.hasAlertLocked(alertSpinRate) {
		return false
	}

	m.upsertAlertLocked(spinRateAlert(len(m.recentSpins), now))
	return true
}
