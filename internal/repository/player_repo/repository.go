package player_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
)

const keyPrefix = "zodiac:player:"

type storedPlayer struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}

type repo struct {
	rdb *redis.Client
}

func NewPlayerRepository(rdb *redis.Client) repository.PlayerRepository {
	return &repo{
		rdb: rdb,
	}
}

func key(deviceID string) string {
	return keyPrefix + deviceID
}

// GetPlayer - возвращает игрока, привязанного к устройству
func (r *repo) GetPlayer(ctx context.Context, deviceID string) (*model.Player, error) {
	raw, err := r.rdb.Get(ctx, key(deviceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var p storedPlayer
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedState, err)
	}
	return &model.Player{ID: p.ID, DeviceID: p.DeviceID, CreatedAt: p.CreatedAt}, nil
}

// CreatePlayer - привязывает игрока к устройству через SETNX.
// Если устройство уже занято, возвращает существующего игрока
func (r *repo) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	raw, err := json.Marshal(storedPlayer{
		ID:        player.ID,
		DeviceID:  player.DeviceID,
		CreatedAt: player.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	ok, err := r.rdb.SetNX(ctx, key(player.DeviceID), raw, 0).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.GetPlayer(ctx, player.DeviceID)
	}
	return player, nil
}
