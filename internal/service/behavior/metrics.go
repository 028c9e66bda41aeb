package behavior

import (
	"time"

	"zodiac_backend/internal/model"
)

// GetMetrics computes the behavior metrics over the trailing 30 minutes.
func (m *Monitor) GetMetrics() model.BehaviorMetrics {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.metricsLocked(m.clock.Now())
}

func (m *Monitor) metricsLocked(now time.Time) model.BehaviorMetrics {
	cutoff := now.Add(-metricsWindow)

	var count, totalBet, wins, losses int
	for _, b := range m.betHistory {
		if b.Timestamp.Before(cutoff) {
			continue
		}
		count++
		totalBet += b.BetAmount
		if b.Won {
			wins++
		} else {
			losses++
		}
	}

	avgBet := 0.0
	if count > 0 {
		avgBet = float64(totalBet) / float64(count)
	}

	// Без проигрышей отдаём количество выигрышей, а не бесконечность
	ratio := float64(wins)
	if losses > 0 {
		ratio = float64(wins) / float64(losses)
	}

	rapid := false
	if mean, ok := meanInterval(m.spinHistory, metricsRapidSampleSize); ok {
		rapid = mean < metricsRapidInterval
	}

	return model.BehaviorMetrics{
		SpinsPerMinute:    float64(count) / metricsWindow.Minutes(),
		AvgBetSize:        avgBet,
		SessionDuration:   now.Sub(m.sessionStart),
		WinLossRatio:      ratio,
		RepetitivePattern: isRepetitive(m.betHistory),
		RapidBetting:      rapid,
		LastUpdate:        now,
	}
}
