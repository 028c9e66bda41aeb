package gaming

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

// TakeMandatoryBreak latches the break. Spins are refused until it ends
// 15 minutes later.
func (m *Manager) TakeMandatoryBreak(ctx context.Context) {
	m.mtx.Lock()
	if m.state.MandatoryBreak {
		m.mtx.Unlock()
		return
	}
	now := m.clock.Now()
	m.startBreakLocked(now, breakInProgressAlert(now))
	m.saveLocked(ctx)
	alerts := m.alertsLocked(now)
	m.mtx.Unlock()

	m.dispatch(alerts)
}

func (m *Manager) startBreakLocked(now time.Time, alert model.GameAlert) {
	m.state.MandatoryBreak = true
	m.state.BreakStartedAt = now
	m.state.ContinuousPlayTime = 0
	m.upsertAlertLocked(alert)

	if m.breakTimer != nil {
		m.breakTimer.Stop()
	}
	m.breakTimer = m.clock.AfterFunc(BreakDuration, m.endBreak)
	m.logger.Info("mandatory break started", zap.Time("until", now.Add(BreakDuration)))
}

func (m *Manager) endBreak() {
	m.mtx.Lock()
	if !m.state.MandatoryBreak {
		m.mtx.Unlock()
		return
	}
	now := m.clock.Now()
	m.state.MandatoryBreak = false
	m.state.BreakStartedAt = time.Time{}
	m.breakTimer = nil
	m.removeAlertLocked(alertMandatoryBreak)
	m.upsertAlertLocked(breakCompleteAlert(now))
	m.saveLocked(context.Background())
	alerts := m.alertsLocked(now)
	m.mtx.Unlock()

	m.logger.Info("mandatory break finished")
	m.dispatch(alerts)
}
