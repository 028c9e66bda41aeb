package behavior

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

// createAlertLocked appends a new alert unless one of the same type was
// raised within the dedup window.
func (m *Monitor) createAlertLocked(now time.Time, t model.AlertType, sev model.Severity, msg string) (model.BehaviorAlert, bool) {
	for _, a := range m.alerts {
		if a.Type == t && now.Sub(a.Timestamp) < dedupWindow {
			return model.BehaviorAlert{}, false
		}
	}

	alert := model.BehaviorAlert{
		ID:        uuid.NewString(),
		Type:      t,
		Severity:  sev,
		Message:   msg,
		Timestamp: now,
		Metrics:   m.metricsLocked(now),
	}

	m.alerts = append(m.alerts, alert)
	if len(m.alerts) > alertCap {
		m.alerts = append([]model.BehaviorAlert(nil), m.alerts[len(m.alerts)-alertCap:]...)
	}

	m.metrics.Alert("behavior", string(t))
	m.logger.Info("behavior alert",
		zap.String("type", string(t)),
		zap.String("severity", string(sev)))

	return alert, true
}

// dispatch delivers alert to every subscriber. A panicking subscriber is
// logged and does not stop the others.
func (m *Monitor) dispatch(alert model.BehaviorAlert) {
	m.mtx.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mtx.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("behavior alert subscriber panicked",
						zap.Any("panic", r),
						zap.String("type", string(alert.Type)))
				}
			}()
			s.fn(alert)
		}()
	}
}
