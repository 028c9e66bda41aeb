package audit_sink_repo

import (
	"context"
	"sync"

	"zodiac_backend/internal/model"
)

// MemoryRepo is an in-process sink. While Fail is set every call returns it.
type MemoryRepo struct {
	mtx      sync.Mutex
	entries  []model.AuditLogEntry
	seen     map[string]struct{}
	sessions map[string]model.SessionMetrics
	inserts  int
	fail     error
}

func NewMemoryRepository() *MemoryRepo {
	return &MemoryRepo{
		seen:     make(map[string]struct{}),
		sessions: make(map[string]model.SessionMetrics),
	}
}

func (r *MemoryRepo) SetFailure(err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.fail = err
}

func (r *MemoryRepo) InsertEntries(_ context.Context, entries []model.AuditLogEntry) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.inserts++
	if r.fail != nil {
		return r.fail
	}
	for _, e := range entries {
		if _, ok := r.seen[e.ID]; ok {
			continue
		}
		r.seen[e.ID] = struct{}{}
		r.entries = append(r.entries, e)
	}
	return nil
}

func (r *MemoryRepo) SaveSessionMetrics(_ context.Context, m model.SessionMetrics) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sessions[m.SessionID] = m
	return nil
}

func (r *MemoryRepo) Ping(_ context.Context) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.fail
}

func (r *MemoryRepo) Entries() []model.AuditLogEntry {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	out := make([]model.AuditLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// InsertCalls counts InsertEntries calls, failed ones included.
func (r *MemoryRepo) InsertCalls() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.inserts
}

func (r *MemoryRepo) Session(id string) (model.SessionMetrics, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	m, ok := r.sessions[id]
	return m, ok
}
