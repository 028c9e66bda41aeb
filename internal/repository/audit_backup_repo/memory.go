package audit_backup_repo

import (
	"context"
	"sync"

	"zodiac_backend/internal/model"
)

type MemoryRepo struct {
	mtx      sync.RWMutex
	capacity int
	data     map[string][]model.AuditLogEntry
	// FailWith, when set, is returned by Append.
	FailWith error
}

func NewMemoryRepository(capacity int) *MemoryRepo {
	return &MemoryRepo{
		capacity: capacity,
		data:     make(map[string][]model.AuditLogEntry),
	}
}

func (r *MemoryRepo) Append(_ context.Context, userID string, entries []model.AuditLogEntry) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	list := append(r.data[userID], entries...)
	if len(list) > r.capacity {
		list = append([]model.AuditLogEntry(nil), list[len(list)-r.capacity:]...)
	}
	r.data[userID] = list
	return nil
}

func (r *MemoryRepo) List(_ context.Context, userID string) ([]model.AuditLogEntry, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := make([]model.AuditLogEntry, len(r.data[userID]))
	copy(out, r.data[userID])
	return out, nil
}
