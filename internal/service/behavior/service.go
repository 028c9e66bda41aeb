// Package behavior watches a player's betting cadence and raises alerts on
// rapid, bot-like or excessively long play. It never blocks a spin.
package behavior

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/model"
	"zodiac_backend/pkg/clock"
)

const (
	// historyWindow Сколько истории спинов храним
	historyWindow = time.Hour
	// metricsWindow Окно для метрик и проверки частоты
	metricsWindow = 30 * time.Minute
	// analysisInterval Периодичность фонового анализа
	analysisInterval = 30 * time.Second

	// rapidSampleSize, rapidMeanInterval Проверка быстрых ставок на каждом спине
	rapidSampleSize   = 5
	rapidMeanInterval = time.Second
	// metricsRapidSampleSize, metricsRapidInterval Флаг быстрых ставок в метриках
	metricsRapidSampleSize = 10
	metricsRapidInterval   = 2 * time.Second

	highFrequencyThreshold = 100
	patternSize            = 10
	excessiveSession       = 180 * time.Minute

	// dedupWindow Алерт того же типа не создаётся чаще, чем раз в 5 минут
	dedupWindow = 5 * time.Minute
	alertCap    = 50
)

type subscriber struct {
	id uint64
	fn func(model.BehaviorAlert)
}

type Monitor struct {
	mtx     sync.Mutex
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics

	spinHistory  []time.Time
	betHistory   []model.SpinSample
	sessionStart time.Time
	alerts       []model.BehaviorAlert

	subs      []subscriber
	nextSubID uint64

	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(clk clock.Clock, logger *zap.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{
		clock:        clk,
		logger:       logger.Named("behavior"),
		metrics:      m,
		sessionStart: clk.Now(),
	}
}

// Start runs pattern analysis every 30 seconds until Stop or ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := m.clock.NewTicker(analysisInterval)
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
				m.AnalyzePatterns()
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.mtx.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mtx.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Subscribe registers fn for every new alert. The returned func removes it.
func (m *Monitor) Subscribe(fn func(model.BehaviorAlert)) func() {
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

// ResetSession drops all history and alerts and restarts the session clock.
func (m *Monitor) ResetSession() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.spinHistory = nil
	m.betHistory = nil
	m.alerts = nil
	m.sessionStart = m.clock.Now()
}

func (m *Monitor) GetAlerts() []model.BehaviorAlert {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	out := make([]model.BehaviorAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

func (m *Monitor) GetAuditData() model.BehaviorAuditData {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	alerts := make([]model.BehaviorAlert, len(m.alerts))
	copy(alerts, m.alerts)

	return model.BehaviorAuditData{
		SessionStart: m.sessionStart,
		SpinCount:    len(m.spinHistory),
		Metrics:      m.metricsLocked(m.clock.Now()),
		Alerts:       alerts,
	}
}
