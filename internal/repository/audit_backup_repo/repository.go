package audit_backup_repo

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
)

const keyPrefix = "zodiac:audit_backup:"

type repo struct {
	rdb      *redis.Client
	capacity int
}

// NewAuditBackupRepository - резервная копия аудита в Redis-списке,
// обрезанная до последних capacity записей
func NewAuditBackupRepository(rdb *redis.Client, capacity int) repository.AuditBackupRepository {
	return &repo{
		rdb:      rdb,
		capacity: capacity,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Append - дописывает записи в конец списка и обрезает его до capacity
func (r *repo) Append(ctx context.Context, userID string, entries []model.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values = append(values, raw)
	}

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key(userID), values...)
	pipe.LTrim(ctx, key(userID), int64(-r.capacity), -1)
	_, err := pipe.Exec(ctx)
	return err
}

// List - возвращает всю резервную копию, от старых записей к новым.
// Битые записи пропускаются
func (r *repo) List(ctx context.Context, userID string) ([]model.AuditLogEntry, error) {
	raws, err := r.rdb.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.AuditLogEntry, 0, len(raws))
	for _, raw := range raws {
		var e model.AuditLogEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
