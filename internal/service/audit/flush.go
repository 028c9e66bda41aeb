package audit

import (
	"context"

	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

// Flush copies new entries to the backup and sends the queue to the sink,
// ignoring any backoff in progress.
func (l *Logger) Flush(ctx context.Context) {
	l.flush(ctx, true)
}

// NotifyOnline ends the backoff and flushes at once.
func (l *Logger) NotifyOnline(ctx context.Context) {
	l.mtx.Lock()
	l.backoff = 0
	l.backoffUntil = l.clock.Now()
	l.mtx.Unlock()

	l.logger.Info("audit sink is reachable again")
	l.flush(ctx, true)
}

// FlushToBackup writes entries the backup has not seen yet and leaves the
// remote queue alone.
func (l *Logger) FlushToBackup(ctx context.Context) {
	l.flushMtx.Lock()
	defer l.flushMtx.Unlock()

	l.mtx.Lock()
	fresh := l.takeFreshLocked()
	l.mtx.Unlock()

	l.writeBackup(ctx, fresh)
}

func (l *Logger) tick(ctx context.Context) {
	l.mtx.Lock()
	backingOff := l.backoffUntil.After(l.clock.Now())
	l.mtx.Unlock()

	if !backingOff {
		l.flush(ctx, false)
		return
	}
	if err := l.sink.Ping(ctx); err == nil {
		l.NotifyOnline(ctx)
	}
}

func (l *Logger) flush(ctx context.Context, force bool) {
	l.flushMtx.Lock()
	defer l.flushMtx.Unlock()

	l.mtx.Lock()
	fresh := l.takeFreshLocked()
	var batch []queued
	if force || !l.backoffUntil.After(l.clock.Now()) {
		batch = l.queue
		l.queue = nil
	}
	l.mtx.Unlock()

	l.writeBackup(ctx, fresh)
	if len(batch) == 0 {
		return
	}

	entries := make([]model.AuditLogEntry, len(batch))
	for i, q := range batch {
		entries[i] = q.entry
	}

	err := l.sink.InsertEntries(ctx, entries)

	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err == nil {
		l.backoff = 0
		l.backoffUntil = l.clock.Now()
		l.metrics.AuditDequeued(len(batch))
		l.metrics.AuditFlush("ok")
		l.logger.Debug("audit batch sent", zap.Int("entries", len(batch)))
		return
	}

	l.metrics.AuditFlush("error")
	l.requeueLocked(batch)
	l.logger.Warn("audit flush failed, batch kept for retry",
		zap.Int("entries", len(batch)),
		zap.Duration("backoff", l.backoff),
		zap.Error(err))
}

// requeueLocked puts the failed batch back in front of entries logged since,
// without duplicating it. Entries that ran out of attempts leave the queue;
// their backup copy stays.
func (l *Logger) requeueLocked(batch []queued) {
	retry := make([]queued, 0, len(batch)+len(l.queue))
	dropped := 0
	for _, q := range batch {
		q.attempts++
		if l.opts.MaxRetries > 0 && q.attempts >= l.opts.MaxRetries {
			dropped++
			continue
		}
		retry = append(retry, q)
	}
	l.queue = append(retry, l.queue...)

	if dropped > 0 {
		l.metrics.AuditDequeued(dropped)
		l.metrics.AuditDrop(dropped)
		l.logger.Error("audit entries exceeded retry limit", zap.Int("dropped", dropped))
	}
	if over := len(l.queue) - l.opts.MaxQueue; l.opts.MaxQueue > 0 && over > 0 {
		l.dropOldestLocked(over)
	}

	if l.backoff == 0 {
		l.backoff = initialBackoff
	} else {
		l.backoff = min(l.backoff*2, maxBackoff)
	}
	l.backoffUntil = l.clock.Now().Add(l.backoff)
}

func (l *Logger) dropOldestLocked(n int) {
	l.queue = append([]queued(nil), l.queue[n:]...)
	l.metrics.AuditDequeued(n)
	l.metrics.AuditDrop(n)
	l.logger.Warn("audit queue full, dropped oldest entries", zap.Int("dropped", n))
}

// takeFreshLocked marks queued entries as backed up and returns them.
func (l *Logger) takeFreshLocked() []model.AuditLogEntry {
	var fresh []model.AuditLogEntry
	for i := range l.queue {
		if l.queue[i].backedUp {
			continue
		}
		l.queue[i].backedUp = true
		fresh = append(fresh, l.queue[i].entry)
	}
	return fresh
}

func (l *Logger) writeBackup(ctx context.Context, entries []model.AuditLogEntry) {
	if len(entries) == 0 {
		return
	}
	if err := l.backup.Append(ctx, l.session.UserID, entries); err != nil {
		l.logger.Warn("failed to write audit backup", zap.Int("entries", len(entries)), zap.Error(err))
	}
}
