package compliance

import (
	"context"
	"sync"
	"time"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/internal/service/behavior"
	"zodiac_backend/internal/service/gaming"
)

// pipeline is the compliance chain of one player: observe, gate, persist.
type pipeline struct {
	playerID  string
	sessionID string

	behavior *behavior.Monitor
	gaming   *gaming.Manager
	audit    *audit.Logger

	unsubscribe []func()

	// seen Игровые алерты, уже записанные в аудит (id -> timestamp)
	seenMtx sync.Mutex
	seen    map[string]time.Time
}

func (s *serv) newPipeline(ctx context.Context, playerID, sessionID string, device *model.DeviceInfo) *pipeline {
	p := &pipeline{
		playerID:  playerID,
		sessionID: sessionID,
		behavior:  behavior.NewMonitor(s.clock, s.logger, s.metrics),
		gaming:    gaming.NewManager(ctx, playerID, s.gamingCfg, s.stateRepo, s.clock, s.logger, s.metrics),
		audit: audit.NewLogger(
			audit.Session{UserID: playerID, SessionID: sessionID, Device: device},
			s.auditOpts, s.sinkRepo, s.backupRepo, s.clock, s.logger, s.metrics),
		seen: make(map[string]time.Time),
	}

	// Алерты, поднятые прошлой сессией, повторно не пишем
	for _, a := range p.gaming.GetAlerts() {
		p.seen[a.ID] = a.Timestamp
	}

	p.unsubscribe = append(p.unsubscribe,
		p.behavior.Subscribe(func(a model.BehaviorAlert) {
			p.audit.LogAlert(context.Background(), string(model.AlertSourceBehavior),
				string(a.Type), string(a.Severity), a.Message)
			alert := a
			s.hub.publish(playerID, model.AlertEvent{Source: model.AlertSourceBehavior, Behavior: &alert})
		}),
		p.gaming.Subscribe(func(alerts []model.GameAlert) {
			for _, a := range p.newGameAlerts(alerts) {
				p.audit.LogAlert(context.Background(), string(model.AlertSourceGaming),
					a.ID, string(a.Type), a.Title+": "+a.Message)
			}
			s.hub.publish(playerID, model.AlertEvent{Source: model.AlertSourceGaming, Gaming: alerts})
		}),
	)
	return p
}

// newGameAlerts returns the alerts of the list not recorded before. An id
// raised again with a later timestamp counts as new.
func (p *pipeline) newGameAlerts(alerts []model.GameAlert) []model.GameAlert {
	p.seenMtx.Lock()
	defer p.seenMtx.Unlock()

	var fresh []model.GameAlert
	for _, a := range alerts {
		if ts, ok := p.seen[a.ID]; ok && !a.Timestamp.After(ts) {
			continue
		}
		p.seen[a.ID] = a.Timestamp
		fresh = append(fresh, a)
	}
	return fresh
}

func (p *pipeline) start(ctx context.Context) {
	p.behavior.Start(ctx)
	p.gaming.Start(ctx)
	p.audit.Start(ctx)
}

// stop halts the tickers and leaves the queued audit entries in the backup.
func (p *pipeline) stop(ctx context.Context) {
	for _, unsubscribe := range p.unsubscribe {
		unsubscribe()
	}
	p.behavior.Stop()
	p.gaming.Stop()
	p.audit.Stop(ctx)
}
