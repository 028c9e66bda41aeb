package behavior

import (
	"fmt"
	"time"

	"zodiac_backend/internal/model"
)

// AnalyzePatterns runs the periodic checks: spin frequency, repetitive
// bets and session length.
func (m *Monitor) AnalyzePatterns() {
	m.mtx.Lock()
	now := m.clock.Now()
	var raised []model.BehaviorAlert

	if n := countSince(m.spinHistory, now.Add(-metricsWindow)); n > highFrequencyThreshold {
		if a, ok := m.createAlertLocked(now,
			model.AlertHighFrequency,
			model.SeverityMedium,
			fmt.Sprintf("%d spins in the last 30 minutes. Remember to take regular breaks.", n),
		); ok {
			raised = append(raised, a)
		}
	}

	if isRepetitive(m.betHistory) {
		if a, ok := m.createAlertLocked(now,
			model.AlertBotLike,
			model.SeverityHigh,
			"Automated betting pattern detected. Automated play is not permitted.",
		); ok {
			raised = append(raised, a)
		}
	}

	if d := now.Sub(m.sessionStart); d > excessiveSession {
		if a, ok := m.createAlertLocked(now,
			model.AlertExcessiveSession,
			model.SeverityMedium,
			fmt.Sprintf("You have been playing for %d minutes. Time for a break?", int(d.Minutes())),
		); ok {
			raised = append(raised, a)
		}
	}
	m.mtx.Unlock()

	for _, a := range raised {
		m.dispatch(a)
	}
}

func countSince(history []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range history {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// isRepetitive flags the last 10 bets when they are all the same amount or
// strictly alternate between exactly two amounts.
func isRepetitive(bets []model.SpinSample) bool {
	if len(bets) < patternSize {
		return false
	}
	last := bets[len(bets)-patternSize:]

	first := last[0].BetAmount
	allSame := true
	for _, b := range last[1:] {
		if b.BetAmount != first {
			allSame = false
			break
		}
	}
	if allSame {
		return true
	}

	second := last[1].BetAmount
	if first == second {
		return false
	}
	for i, b := range last {
		want := first
		if i%2 == 1 {
			want = second
		}
		if b.BetAmount != want {
			return false
		}
	}
	return true
}
