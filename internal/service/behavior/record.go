package behavior

import (
	"time"

	"zodiac_backend/internal/model"
)

// RecordSpin adds a spin to the rolling histories and immediately checks
// for rapid betting.
func (m *Monitor) RecordSpin(betAmount int, won bool, winAmount int) {
	m.mtx.Lock()
	now := m.clock.Now()

	m.spinHistory = append(m.spinHistory, now)
	m.betHistory = append(m.betHistory, model.SpinSample{
		Timestamp: now,
		BetAmount: betAmount,
		Won:       won,
		WinAmount: winAmount,
	})
	m.pruneLocked(now)

	alert, ok := m.checkRapidBettingLocked(now)
	m.mtx.Unlock()

	if ok {
		m.dispatch(alert)
	}
}

// pruneLocked Удаляем всё старше часа
func (m *Monitor) pruneLocked(now time.Time) {
	cutoff := now.Add(-historyWindow)

	i := 0
	for i < len(m.spinHistory) && m.spinHistory[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		m.spinHistory = append([]time.Time(nil), m.spinHistory[i:]...)
	}

	j := 0
	for j < len(m.betHistory) && m.betHistory[j].Timestamp.Before(cutoff) {
		j++
	}
	if j > 0 {
		m.betHistory = append([]model.SpinSample(nil), m.betHistory[j:]...)
	}
}

// checkRapidBettingLocked Средний интервал между последними 5 спинами меньше секунды
func (m *Monitor) checkRapidBettingLocked(now time.Time) (model.BehaviorAlert, bool) {
	mean, ok := meanInterval(m.spinHistory, rapidSampleSize)
	if !ok || mean >= rapidMeanInterval {
		return model.BehaviorAlert{}, false
	}

	return m.createAlertLocked(now,
		model.AlertRapidBetting,
		model.SeverityHigh,
		"Very fast betting detected. Consider slowing down and taking a short pause.",
	)
}

// meanInterval returns the mean gap between the last n timestamps.
// It needs at least two samples.
func meanInterval(history []time.Time, n int) (time.Duration, bool) {
	if len(history) < 2 {
		return 0, false
	}
	recent := history[max(0, len(history)-n):]
	span := recent[len(recent)-1].Sub(recent[0])
	return span / time.Duration(len(recent)-1), true
}
