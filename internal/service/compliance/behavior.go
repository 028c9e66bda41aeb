package compliance

import (
	"context"

	"zodiac_backend/internal/model"
)

func (s *serv) BehaviorMetrics(ctx context.Context, playerID string) (model.BehaviorMetrics, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.BehaviorMetrics{}, err
	}
	return p.behavior.GetMetrics(), nil
}

func (s *serv) BehaviorAlerts(ctx context.Context, playerID string) ([]model.BehaviorAlert, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return p.behavior.GetAlerts(), nil
}

func (s *serv) BehaviorAudit(ctx context.Context, playerID string) (model.BehaviorAuditData, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.BehaviorAuditData{}, err
	}
	return p.behavior.GetAuditData(), nil
}

func (s *serv) ResetBehavior(ctx context.Context, playerID string) error {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return err
	}
	p.behavior.ResetSession()
	return nil
}
