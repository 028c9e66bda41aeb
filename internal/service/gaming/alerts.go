package gaming

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

const (
	alertDailyLimit        = "daily-limit"
	alertDailyLimitWarning = "daily-limit-warning"
	alertMandatoryBreak    = "mandatory-break"
	alertBreakComplete     = "break-complete"
	alertReminder          = "recreational-reminder"
	alertSpinRate          = "spin-rate"
	alertContinuousPrefix  = "continuous-play-"

	warningDuration = 15 * time.Second
	infoDuration    = 10 * time.Second
)

func continuousPlayAlert(minutes int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:         fmt.Sprintf("%s%d", alertContinuousPrefix, minutes),
		Type:       model.GameAlertWarning,
		Title:      "Time check",
		Message:    fmt.Sprintf("You have been playing for %d minutes. Consider taking a short break.", minutes),
		Duration:   warningDuration,
		Timestamp:  now,
		CanDismiss: true,
	}
}

func breakRequiredAlert(minutes int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:    alertMandatoryBreak,
		Type:  model.GameAlertMandatory,
		Title: "Mandatory break",
		Message: fmt.Sprintf("You have played for %d minutes without a pause. Play resumes after a %d minute break.",
			minutes, int(BreakDuration.Minutes())),
		Timestamp:  now,
		CanDismiss: false,
	}
}

func breakInProgressAlert(started time.Time) model.GameAlert {
	return model.GameAlert{
		ID:    alertMandatoryBreak,
		Type:  model.GameAlertMandatory,
		Title: "Break in progress",
		Message: fmt.Sprintf("Play resumes at %s.",
			started.Add(BreakDuration).Format(time.Kitchen)),
		Timestamp:  started,
		CanDismiss: false,
	}
}

func breakCompleteAlert(now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:         alertBreakComplete,
		Type:       model.GameAlertInfo,
		Title:      "Welcome back",
		Message:    "Your break is over. Enjoy the game responsibly.",
		Duration:   infoDuration,
		Timestamp:  now,
		CanDismiss: true,
	}
}

func dailyLimitAlert(limit int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:         alertDailyLimit,
		Type:       model.GameAlertMandatory,
		Title:      "Daily limit reached",
		Message:    fmt.Sprintf("You have reached today's limit of %d coins. Play is available again tomorrow.", limit),
		Timestamp:  now,
		CanDismiss: false,
	}
}

func dailyLimitWarningAlert(spent, limit int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:         alertDailyLimitWarning,
		Type:       model.GameAlertWarning,
		Title:      "Approaching daily limit",
		Message:    fmt.Sprintf("You have used %d of your %d daily coins.", spent, limit),
		Duration:   warningDuration,
		Timestamp:  now,
		CanDismiss: true,
	}
}

func reminderAlert(spins int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:    alertReminder,
		Type:  model.GameAlertInfo,
		Title: "Just for fun",
		Message: fmt.Sprintf("%d spins today. Zodiac Fortune uses virtual coins only: they have no cash value and cannot be withdrawn.",
			spins),
		Duration:   infoDuration,
		Timestamp:  now,
		CanDismiss: true,
	}
}

func spinRateAlert(spins int, now time.Time) model.GameAlert {
	return model.GameAlert{
		ID:         alertSpinRate,
		Type:       model.GameAlertWarning,
		Title:      "Slow down",
		Message:    fmt.Sprintf("%d spins in the last 30 minutes. Pace yourself.", spins),
		Duration:   warningDuration,
		Timestamp:  now,
		CanDismiss: true,
	}
}

// upsertAlertLocked adds alert, replacing any live alert with the same id.
func (m *Manager) upsertAlertLocked(alert model.GameAlert) {
	for i, a := range m.alerts {
		if a.ID == alert.ID {
			m.alerts[i] = alert
			m.metrics.Alert("gaming", string(alert.Type))
			return
		}
	}
	m.alerts = append(m.alerts, alert)
	m.metrics.Alert("gaming", string(alert.Type))
	m.logger.Info("responsible gaming alert",
		zap.String("id", alert.ID),
		zap.String("type", string(alert.Type)))
}

func (m *Manager) removeAlertLocked(id string) bool {
	for i, a := range m.alerts {
		if a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) hasAlertLocked(id string) bool {
	for _, a := range m.alerts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// alertsLocked drops timed alerts whose duration has passed and returns a copy.
func (m *Manager) alertsLocked(now time.Time) []model.GameAlert {
	live := m.alerts[:0]
	for _, a := range m.alerts {
		if a.Duration > 0 && now.Sub(a.Timestamp) >= a.Duration {
			continue
		}
		live = append(live, a)
	}
	m.alerts = live

	out := make([]model.GameAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

func (m *Manager) GetAlerts() []model.GameAlert {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.alertsLocked(m.clock.Now())
}

// DismissAlert removes a dismissible alert. Mandatory alerts ignore it.
func (m *Manager) DismissAlert(id string) {
	m.mtx.Lock()
	removed := false
	for _, a := range m.alerts {
		if a.ID == id && a.CanDismiss {
			removed = m.removeAlertLocked(id)
			break
		}
	}
	alerts := m.alertsLocked(m.clock.Now())
	m.mtx.Unlock()

	if removed {
		m.dispatch(alerts)
	}
}

// Subscribe registers fn to receive the full alert list on every change.
func (m *Manager) Subscribe(fn func([]model.GameAlert)) func() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})

	return func() {
		m.mtx.Lock()
		defer m.mtx.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) dispatch(alerts []model.GameAlert) {
	m.mtx.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mtx.Unlock()

	for _, s := range subs {
		snapshot := make([]model.GameAlert, len(alerts))
		copy(snapshot, alerts)
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("gaming alert subscriber panicked", zap.Any("panic", r))
				}
			}()
			s.fn(snapshot)
		}()
	}
}
