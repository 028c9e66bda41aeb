// Package audit keeps the compliance trail of one play session. Entries are
// queued in memory, copied once to the local backup and shipped in batches to
// the remote sink with bounded retries.
package audit

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/config"
	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	"zodiac_backend/pkg/clock"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 5 * time.Minute
)

// Options Параметры очереди аудита
type Options struct {
	FlushInterval time.Duration
	BatchSize     int
	MaxQueue      int
	MaxRetries    int
}

func OptionsFromConfig(cfg config.AuditConfig) Options {
	return Options{
		FlushInterval: cfg.FlushInterval(),
		BatchSize:     cfg.BatchSize(),
		MaxQueue:      cfg.MaxQueue(),
		MaxRetries:    cfg.MaxRetries(),
	}
}

// Session identifies whose trail the logger writes.
type Session struct {
	UserID    string
	SessionID string
	Device    *model.DeviceInfo
}

type queued struct {
	entry    model.AuditLogEntry
	attempts int
	backedUp bool
}

type Logger struct {
	mtx sync.Mutex
	// flushMtx serializes flushes; taken before mtx
	flushMtx sync.Mutex

	session Session
	opts    Options
	sink    repository.AuditSinkRepository
	backup  repository.AuditBackupRepository
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
	entropy io.Reader

	queue        []queued
	backoff      time.Duration
	backoffUntil time.Time

	stats    model.SessionMetrics
	features map[string]struct{}
	ended    bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLogger opens the session trail and records session_start.
func NewLogger(
	session Session,
	opts Options,
	sink repository.AuditSinkRepository,
	backup repository.AuditBackupRepository,
	clk clock.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Logger {
	now := clk.Now()
	l := &Logger{
		session: session,
		opts:    opts,
		sink:    sink,
		backup:  backup,
		clock:   clk,
		logger: logger.Named("audit").With(
			zap.String("user_id", session.UserID),
			zap.String("session_id", session.SessionID)),
		metrics:  m,
		entropy:  ulidEntropy(rand.Reader),
		features: make(map[string]struct{}),
		stats: model.SessionMetrics{
			UserID:    session.UserID,
			SessionID: session.SessionID,
			StartTime: now,
		},
	}

	l.Log(context.Background(), model.ActionSessionStart, map[string]any{
		"startTime": now,
	})
	return l
}

// Start flushes every FlushInterval until Stop or ctx is done. While the sink
// is backing off the tick only probes it.
func (l *Logger) Start(ctx context.Context) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := l.clock.NewTicker(l.opts.FlushInterval)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				l.tick(ctx)
			}
		}
	}()
}

// Stop halts the flush ticker and writes whatever is still queued to the
// local backup.
func (l *Logger) Stop(ctx context.Context) {
	l.mtx.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mtx.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	l.FlushToBackup(ctx)

	// Очередь уже в бэкапе, в удалённый приёмник её больше никто не отправит
	l.mtx.Lock()
	pending := len(l.queue)
	l.queue = nil
	l.mtx.Unlock()
	l.metrics.AuditDequeued(pending)
}

// QueueLen returns the number of entries waiting for the remote sink.
func (l *Logger) QueueLen() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.queue)
}
