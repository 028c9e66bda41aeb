package gaming_state_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	repoModel "zodiac_backend/internal/repository/gaming_state_repo/model"
)

// MemoryRepo keeps states as encoded JSON, so it behaves like the Redis
// repository with respect to copies and corrupted records.
type MemoryRepo struct {
	mtx  sync.RWMutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]byte),
	}
}

func (r *MemoryRepo) GetState(_ context.Context, playerID string) (*model.ResponsibleGamingState, error) {
	r.mtx.RLock()
	raw, ok := r.data[playerID]
	r.mtx.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}

	var stored repoModel.GamingState
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedState, err)
	}
	return fromRepo(stored), nil
}

func (r *MemoryRepo) SaveState(_ context.Context, playerID string, state *model.ResponsibleGamingState) error {
	raw, err := json.Marshal(toRepo(state))
	if err != nil {
		return err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.data[playerID] = raw
	return nil
}

func (r *MemoryRepo) DeleteState(_ context.Context, playerID string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.data, playerID)
	return nil
}

// PutRaw stores raw bytes under playerID, bypassing encoding.
func (r *MemoryRepo) PutRaw(playerID string, raw []byte) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.data[playerID] = raw
}

func (r *MemoryRepo) Has(playerID string) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.data[playerID]
	return ok
}
