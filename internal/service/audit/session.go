package audit

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

// GetSessionMetrics returns a snapshot of the running aggregate.
func (l *Logger) GetSessionMetrics() model.SessionMetrics {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.snapshotLocked()
}

func (l *Logger) snapshotLocked() model.SessionMetrics {
	s := l.stats
	s.FeaturesUsed = slices.Clone(l.stats.FeaturesUsed)
	if l.stats.EndTime != nil {
		end := *l.stats.EndTime
		s.EndTime = &end
	}
	return s
}

// EndSession closes the session: logs session_end, flushes and stores the
// aggregate in the sink. A second call returns ErrSessionEnded.
func (l *Logger) EndSession(ctx context.Context) (model.SessionMetrics, error) {
	l.mtx.Lock()
	if l.ended {
		s := l.snapshotLocked()
		l.mtx.Unlock()
		return s, ErrSessionEnded
	}
	l.ended = true
	now := l.clock.Now()
	l.stats.EndTime = &now
	duration := now.Sub(l.stats.StartTime)
	l.enqueueLocked(model.ActionSessionEnd, map[string]any{
		"durationSeconds": int64(duration.Seconds()),
		"totalSpins":      l.stats.TotalSpins,
		"netResult":       l.stats.NetResult,
	})
	s := l.snapshotLocked()
	l.mtx.Unlock()

	l.Flush(ctx)
	if err := l.sink.SaveSessionMetrics(ctx, s); err != nil {
		l.logger.Warn("failed to store session metrics", zap.Error(err))
	}
	l.logger.Info("audit session ended", zap.Duration("duration", duration), zap.Int("spins", s.TotalSpins))
	return s, nil
}
