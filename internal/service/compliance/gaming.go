package compliance

import (
	"context"

	"zodiac_backend/internal/model"
)

func (s *serv) RequestConfirmation(ctx context.Context, playerID string, amount int) (model.HighBetConfirmation, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.HighBetConfirmation{}, err
	}
	return p.gaming.RequestConfirmation(amount), nil
}

func (s *serv) ResolveConfirmation(ctx context.Context, playerID, id string, approved bool) (model.HighBetConfirmation, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.HighBetConfirmation{}, err
	}
	return p.gaming.ResolveConfirmation(id, approved)
}

func (s *serv) GamingState(ctx context.Context, playerID string) (model.ResponsibleGamingState, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.ResponsibleGamingState{}, err
	}
	return p.gaming.GetState(ctx), nil
}

func (s *serv) GamingAlerts(ctx context.Context, playerID string) ([]model.GameAlert, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return p.gaming.GetAlerts(), nil
}

func (s *serv) DismissAlert(ctx context.Context, playerID, alertID string) error {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return err
	}
	p.gaming.DismissAlert(alertID)
	return nil
}

func (s *serv) TakeMandatoryBreak(ctx context.Context, playerID string) (model.ResponsibleGamingState, error) {
	p, err := s.get(ctx, playerID)
	if err != nil {
		return model.ResponsibleGamingState{}, err
	}
	p.gaming.TakeMandatoryBreak(ctx)
	return p.gaming.GetState(ctx), nil
}
