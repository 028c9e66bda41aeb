// Package compliance wires the behavior monitor, the responsible gaming
// manager and the audit logger into one pipeline per player.
package compliance

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"zodiac_backend/internal/config"
	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	"zodiac_backend/internal/service"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/pkg/clock"
)

var ErrNoSession = errors.New("no active session for player")

// endedCap Сколько завершённых сессий помнит реестр
const endedCap = 10000

type serv struct {
	mtx       sync.Mutex
	pipelines map[string]*pipeline
	closed    bool

	// ended Завершённые сессии: токен с таким sid больше не открывает конвейер
	ended      map[string]struct{}
	endedOrder []string
	opening    singleflight.Group

	gamingCfg  config.GamingConfig
	auditOpts  audit.Options
	stateRepo  repository.GamingStateRepository
	backupRepo repository.AuditBackupRepository
	sinkRepo   repository.AuditSinkRepository
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *metrics.Metrics
	hub        *hub
}

// NewService Создать реестр конвейеров комплаенса
func NewService(
	gamingCfg config.GamingConfig,
	auditOpts audit.Options,
	stateRepo repository.GamingStateRepository,
	backupRepo repository.AuditBackupRepository,
	sinkRepo repository.AuditSinkRepository,
	clk clock.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
) service.ComplianceService {
	return &serv{
		pipelines:  make(map[string]*pipeline),
		ended:      make(map[string]struct{}),
		gamingCfg:  gamingCfg,
		auditOpts:  auditOpts,
		stateRepo:  stateRepo,
		backupRepo: backupRepo,
		sinkRepo:   sinkRepo,
		clock:      clk,
		logger:     logger.Named("compliance"),
		metrics:    m,
		hub:        newHub(),
	}
}

// OpenSession returns the player's pipeline, creating and starting it when
// absent. An empty sessionID gets a fresh one.
func (s *serv) OpenSession(ctx context.Context, playerID, sessionID string, device *model.DeviceInfo) (string, error) {
	p, err := s.open(ctx, playerID, sessionID, device)
	if err != nil {
		return "", err
	}
	return p.sessionID, nil
}

func (s *serv) open(ctx context.Context, playerID, sessionID string, device *model.DeviceInfo) (*pipeline, error) {
	if p, found, err := s.lookup(playerID, sessionID); found {
		return p, err
	}

	// Загрузка состояния идёт в хранилище, реестр на это время не блокируется
	v, err, _ := s.opening.Do(playerID, func() (any, error) {
		if p, found, err := s.lookup(playerID, sessionID); found {
			return p, err
		}

		id := sessionID
		if id == "" {
			id = uuid.NewString()
		}
		// Тикеры живут дольше запроса, который открыл сессию
		runCtx := context.WithoutCancel(ctx)
		p := s.newPipeline(runCtx, playerID, id, device)

		s.mtx.Lock()
		if s.closed {
			s.mtx.Unlock()
			p.stop(runCtx)
			return nil, service.ErrShuttingDown
		}
		p.start(runCtx)
		s.pipelines[playerID] = p
		s.mtx.Unlock()

		s.metrics.PipelineOpened()
		s.logger.Info("compliance pipeline opened",
			zap.String("player_id", playerID),
			zap.String("session_id", id))
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pipeline), nil
}

// lookup resolves open without building anything. found is false when a new
// pipeline has to be built.
func (s *serv) lookup(playerID, sessionID string) (*pipeline, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, true, service.ErrShuttingDown
	}
	if _, ok := s.ended[sessionID]; ok && sessionID != "" {
		return nil, true, ErrNoSession
	}
	if p, ok := s.pipelines[playerID]; ok {
		return p, true, nil
	}
	return nil, false, nil
}

func (s *serv) markEndedLocked(sessionID string) {
	if _, ok := s.ended[sessionID]; ok {
		return
	}
	s.ended[sessionID] = struct{}{}
	s.endedOrder = append(s.endedOrder, sessionID)
	if len(s.endedOrder) > endedCap {
		delete(s.ended, s.endedOrder[0])
		s.endedOrder = s.endedOrder[1:]
	}
}

// get returns the live pipeline of the caller's session, reopening it after a
// restart.
func (s *serv) get(ctx context.Context, playerID string) (*pipeline, error) {
	return s.open(ctx, playerID, service.SessionIDFromContext(ctx), nil)
}

// EndSession finalizes the audit session and tears the pipeline down.
func (s *serv) EndSession(ctx context.Context, playerID string) (model.SessionMetrics, error) {
	s.mtx.Lock()
	p, ok := s.pipelines[playerID]
	if ok {
		delete(s.pipelines, playerID)
		s.markEndedLocked(p.sessionID)
	}
	s.mtx.Unlock()
	if !ok {
		return model.SessionMetrics{}, ErrNoSession
	}

	summary, err := p.audit.EndSession(ctx)
	p.stop(ctx)
	s.hub.closePlayer(playerID)
	s.metrics.PipelineClosed()
	s.logger.Info("compliance pipeline closed", zap.String("player_id", playerID))
	return summary, err
}

// Close stops every pipeline. Queued audit entries end up in the backup.
func (s *serv) Close(ctx context.Context) {
	s.mtx.Lock()
	s.closed = true
	pipelines := s.pipelines
	s.pipelines = make(map[string]*pipeline)
	s.mtx.Unlock()

	for playerID, p := range pipelines {
		p.stop(ctx)
		s.hub.closePlayer(playerID)
		s.metrics.PipelineClosed()
	}
	s.logger.Info("compliance pipelines stopped", zap.Int("count", len(pipelines)))
}

func (s *serv) SubscribeAlerts(playerID string) (<-chan model.AlertEvent, func()) {
	return s.hub.subscribe(playerID)
}
