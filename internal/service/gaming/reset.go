package gaming

import (
	"time"

	"go.uber.org/zap"
)

// resetDailyLocked zeroes the daily counters the first time it runs on a new
// calendar date in the configured reset zone. It reports whether it did.
func (m *Manager) resetDailyLocked(now time.Time) bool {
	today := m.dateOf(now)
	if m.state.LastDailyReset == today {
		return false
	}

	m.logger.Info("daily limits reset",
		zap.String("previous", m.state.LastDailyReset),
		zap.String("today", today))

	m.state.DailySpinCount = 0
	m.state.DailyCoinsSpent = 0
	m.state.WarningLevel = 0
	m.state.DailyWarningIssued = false
	m.state.LastDailyReset = today

	m.removeAlertLocked(alertDailyLimit)
	m.removeAlertLocked(alertDailyLimitWarning)
	return true
}
