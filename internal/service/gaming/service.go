// Package gaming enforces the responsible gaming limits of one player:
// the spin gate, continuous play tracking, mandatory breaks and alerts.
package gaming

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/config"
	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	"zodiac_backend/pkg/clock"
)

const (
	// monitorInterval Периодичность фоновой проверки
	monitorInterval = time.Minute
	// continuousGap Перерыв меньше 5 минут не прерывает непрерывную игру
	continuousGap = 5 * time.Minute
	// BreakDuration Длительность обязательного перерыва
	BreakDuration = 15 * time.Minute
	// reminderEvery Каждый 50-й спин напоминаем про виртуальную валюту
	reminderEvery = 50
	// spinRateWindow Окно для maxSpinsPer30Min
	spinRateWindow = 30 * time.Minute

	dateLayout = "2006-01-02"
)

type subscriber struct {
	id uint64
	fn func([]model.GameAlert)
}

type Manager struct {
	mtx      sync.Mutex
	playerID string
	cfg      config.GamingConfig
	repo     repository.GamingStateRepository
	clock    clock.Clock
	logger   *zap.Logger
	metrics  *metrics.Metrics

	state       model.ResponsibleGamingState
	alerts      []model.GameAlert
	recentSpins []time.Time
	breakTimer  clock.Timer

	confirmations map[string]*model.HighBetConfirmation
	waiters       map[string]chan bool

	subs      []subscriber
	nextSubID uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager loads the player's persisted state. Storage problems are
// logged and the manager starts from fresh defaults.
func NewManager(
	ctx context.Context,
	playerID string,
	cfg config.GamingConfig,
	repo repository.GamingStateRepository,
	clk clock.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Manager {
	mgr := &Manager{
		playerID:      playerID,
		cfg:           cfg,
		repo:          repo,
		clock:         clk,
		logger:        logger.Named("gaming").With(zap.String("player_id", playerID)),
		metrics:       m,
		confirmations: make(map[string]*model.HighBetConfirmation),
		waiters:       make(map[string]chan bool),
	}

	mgr.mtx.Lock()
	defer mgr.mtx.Unlock()
	mgr.loadLocked(ctx)
	return mgr
}

func (m *Manager) loadLocked(ctx context.Context) {
	now := m.clock.Now()

	state, err := m.repo.GetState(ctx, m.playerID)
	switch {
	case err == nil:
		m.state = *state
	case errors.Is(err, repository.ErrNotFound):
		m.state = model.ResponsibleGamingState{LastDailyReset: m.dateOf(now)}
	case errors.Is(err, repository.ErrMalformedState):
		m.logger.Warn("stored responsible gaming state is corrupted, starting fresh", zap.Error(err))
		if delErr := m.repo.DeleteState(ctx, m.playerID); delErr != nil {
			m.logger.Warn("failed to clear corrupted state", zap.Error(delErr))
		}
		m.state = model.ResponsibleGamingState{LastDailyReset: m.dateOf(now)}
	default:
		m.logger.Warn("failed to load responsible gaming state, continuing in memory", zap.Error(err))
		m.state = model.ResponsibleGamingState{LastDailyReset: m.dateOf(now)}
	}

	m.state.SessionStartTime = now
	m.state.TotalSessionTime = 0
	m.resetDailyLocked(now)

	// Перерыв мог начаться в прошлой сессии
	if m.state.MandatoryBreak {
		remaining := m.state.BreakStartedAt.Add(BreakDuration).Sub(now)
		if remaining <= 0 {
			m.state.MandatoryBreak = false
			m.state.BreakStartedAt = time.Time{}
		} else {
			m.upsertAlertLocked(breakInProgressAlert(m.state.BreakStartedAt))
			m.breakTimer = m.clock.AfterFunc(remaining, m.endBreak)
		}
	}

	m.saveLocked(ctx)
}

// Start runs the monitoring tick every minute until Stop or ctx is done.
func (m *Manager) Start(ctx context.Context) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := m.clock.NewTicker(monitorInterval)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				m.MonitorTick(ctx)
			}
		}
	}()
}

// Stop halts the ticker and the pending break timer. A running break stays
// latched in storage and resumes with the next manager.
func (m *Manager) Stop() {
	m.mtx.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	if m.breakTimer != nil {
		m.breakTimer.Stop()
		m.breakTimer = nil
	}
	m.mtx.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// GetState returns a copy of the player's state after applying the daily reset.
func (m *Manager) GetState(ctx context.Context) model.ResponsibleGamingState {
	m.mtx.Lock()
	now := m.clock.Now()
	changed := m.resetDailyLocked(now)
	if changed {
		m.saveLocked(ctx)
	}
	state := m.state
	alerts := m.alertsLocked(now)
	m.mtx.Unlock()

	if changed {
		m.dispatch(alerts)
	}
	return state
}

func (m *Manager) saveLocked(ctx context.Context) {
	state := m.state
	if err := m.repo.SaveState(ctx, m.playerID, &state); err != nil {
		m.logger.Warn("failed to persist responsible gaming state", zap.Error(err))
	}
}

func (m *Manager) dateOf(t time.Time) string {
	return t.In(m.cfg.ResetLocation()).Format(dateLayout)
}
