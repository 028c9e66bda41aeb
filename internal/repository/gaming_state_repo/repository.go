package gaming_state_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	repoModel "zodiac_backend/internal/repository/gaming_state_repo/model"
)

const keyPrefix = "zodiac:rg_state:"

type repo struct {
	rdb *redis.Client
}

func NewGamingStateRepository(rdb *redis.Client) repository.GamingStateRepository {
	return &repo{
		rdb: rdb,
	}
}

func key(playerID string) string {
	return keyPrefix + playerID
}

// GetState - читает состояние игрока.
// Возвращает repository.ErrNotFound, если записи нет, и
// repository.ErrMalformedState, если JSON не разбирается
func (r *repo) GetState(ctx context.Context, playerID string) (*model.ResponsibleGamingState, error) {
	raw, err := r.rdb.Get(ctx, key(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var stored repoModel.GamingState
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedState, err)
	}

	return fromRepo(stored), nil
}

// SaveState - перезаписывает состояние игрока целиком
func (r *repo) SaveState(ctx context.Context, playerID string, state *model.ResponsibleGamingState) error {
	raw, err := json.Marshal(toRepo(state))
	if err != nil {
		return err
	}

	return r.rdb.Set(ctx, key(playerID), raw, 0).Err()
}

func (r *repo) DeleteState(ctx context.Context, playerID string) error {
	return r.rdb.Del(ctx, key(playerID)).Err()
}
