package audit

import (
	"context"

	"zodiac_backend/internal/model"
)

// Log enqueues one entry. Reaching the batch size flushes the queue.
func (l *Logger) Log(ctx context.Context, action model.AuditAction, data map[string]any) {
	l.mtx.Lock()
	l.enqueueLocked(action, data)
	full := len(l.queue) >= l.opts.BatchSize
	l.mtx.Unlock()

	if full {
		l.flush(ctx, false)
	}
}

func (l *Logger) enqueueLocked(action model.AuditAction, data map[string]any) {
	now := l.clock.Now()
	l.queue = append(l.queue, queued{entry: model.AuditLogEntry{
		ID:         l.newIDLocked(now),
		Timestamp:  now,
		UserID:     l.session.UserID,
		Action:     action,
		Data:       data,
		SessionID:  l.session.SessionID,
		DeviceInfo: l.session.Device,
	}})
	l.metrics.AuditEnqueued(1)

	if over := len(l.queue) - l.opts.MaxQueue; l.opts.MaxQueue > 0 && over > 0 {
		l.dropOldestLocked(over)
	}
}

func (l *Logger) LogSpin(ctx context.Context, spin model.SpinLog) {
	l.mtx.Lock()
	l.stats.TotalSpins++
	l.stats.TotalBet += spin.Bet
	l.stats.TotalWin += spin.Win
	l.stats.NetResult = l.stats.TotalWin - l.stats.TotalBet
	l.stats.AvgBet = float64(l.stats.TotalBet) / float64(l.stats.TotalSpins)
	l.stats.MaxWin = max(l.stats.MaxWin, spin.Win)
	l.mtx.Unlock()

	data := map[string]any{
		"bet":          spin.Bet,
		"win":          spin.Win,
		"balanceAfter": spin.BalanceAfter,
		"multiplier":   spin.Multiplier,
		"freeSpin":     spin.FreeSpin,
	}
	if len(spin.Symbols) > 0 {
		data["symbols"] = spin.Symbols
	}
	l.Log(ctx, model.ActionSpin, data)
}

func (l *Logger) LogSpinDenied(ctx context.Context, bet int, reason model.DenyReason) {
	l.Log(ctx, model.ActionSpinDenied, map[string]any{
		"bet":    bet,
		"reason": string(reason),
	})
}

func (l *Logger) LogBalanceChange(ctx context.Context, before, after int, reason string) {
	l.Log(ctx, model.ActionBalanceChange, map[string]any{
		"previousBalance": before,
		"newBalance":      after,
		"change":          after - before,
		"reason":          reason,
	})
}

func (l *Logger) LogFeatureUsed(ctx context.Context, feature string, data map[string]any) {
	l.mtx.Lock()
	if _, ok := l.features[feature]; !ok {
		l.features[feature] = struct{}{}
		l.stats.FeaturesUsed = append(l.stats.FeaturesUsed, feature)
	}
	l.mtx.Unlock()

	payload := map[string]any{"feature": feature}
	for k, v := range data {
		if k != "feature" {
			payload[k] = v
		}
	}
	l.Log(ctx, model.ActionFeatureUsed, payload)
}

func (l *Logger) LogSettingsChange(ctx context.Context, setting string, oldValue, newValue any) {
	l.Log(ctx, model.ActionSettingsChange, map[string]any{
		"setting":  setting,
		"oldValue": oldValue,
		"newValue": newValue,
	})
}

// LogAlert records an alert raised by source ("behavior" or "gaming").
func (l *Logger) LogAlert(ctx context.Context, source, alertType, severity, message string) {
	l.Log(ctx, model.ActionAlert, map[string]any{
		"source":   source,
		"type":     alertType,
		"severity": severity,
		"message":  message,
	})
}

func (l *Logger) LogPageView(ctx context.Context, page string) {
	l.Log(ctx, model.ActionPageView, map[string]any{
		"page": page,
	})
}
