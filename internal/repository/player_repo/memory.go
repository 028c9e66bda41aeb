package player_repo

import (
	"context"
	"sync"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
)

type MemoryRepo struct {
	mtx     sync.Mutex
	players map[string]model.Player
}

func NewMemoryRepository() *MemoryRepo {
	return &MemoryRepo{
		players: make(map[string]model.Player),
	}
}

func (r *MemoryRepo) GetPlayer(_ context.Context, deviceID string) (*model.Player, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	p, ok := r.players[deviceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepo) CreatePlayer(_ context.Context, player *model.Player) (*model.Player, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if p, ok := r.players[player.DeviceID]; ok {
		return &p, nil
	}
	r.players[player.DeviceID] = *player
	out := *player
	return &out, nil
}
