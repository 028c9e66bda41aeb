package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository/audit_backup_repo"
	"zodiac_backend/internal/repository/audit_sink_repo"
	"zodiac_backend/pkg/clock"
)

var (
	epoch      = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	errOffline = errors.New("network unreachable")
)

type fixture struct {
	log    *Logger
	sink   *audit_sink_repo.MemoryRepo
	backup *audit_backup_repo.MemoryRepo
	clk    *clock.Fake
}

func defaultOptions() Options {
	return Options{
		FlushInterval: 30 * time.Second,
		BatchSize:     50,
		MaxQueue:      5000,
		MaxRetries:    5,
	}
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	sink := audit_sink_repo.NewMemoryRepository()
	backup := audit_backup_repo.NewMemoryRepository(1000)
	clk := clock.NewFake(epoch)
	l := NewLogger(Session{UserID: "user-1", SessionID: "session-1"}, opts, sink, backup, clk, zaptest.NewLogger(t), nil)
	return fixture{log: l, sink: sink, backup: backup, clk: clk}
}

func (f fixture) backedUp(t *testing.T) []model.AuditLogEntry {
	t.Helper()
	entries, err := f.backup.List(context.Background(), "user-1")
	require.NoError(t, err)
	return entries
}

func logViews(ctx context.Context, l *Logger, n int) {
	for i := 0; i < n; i++ {
		l.LogPageView(ctx, "lobby")
	}
}

func TestSessionStartIsLogged(t *testing.T) {
	f := newFixture(t, defaultOptions())

	logs, err := f.log.GetRecentLogs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionSessionStart, logs[0].Action)
	assert.Equal(t, "user-1", logs[0].UserID)
	assert.Equal(t, "session-1", logs[0].SessionID)
	assert.NotEmpty(t, logs[0].ID)
}

func TestAutoFlushAtBatchSize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	// session_start already occupies one slot
	logViews(ctx, f.log, 48)
	assert.Equal(t, 49, f.log.QueueLen())
	assert.Zero(t, f.sink.InsertCalls())
	assert.Empty(t, f.backedUp(t))

	logViews(ctx, f.log, 1)
	assert.Equal(t, 1, f.sink.InsertCalls())
	assert.Len(t, f.sink.Entries(), 50)
	assert.Len(t, f.backedUp(t), 50)
	assert.Zero(t, f.log.QueueLen())
}

func TestFailedBatchIsRequeuedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	f.sink.SetFailure(errOffline)

	logViews(ctx, f.log, 49)
	require.Equal(t, 1, f.sink.InsertCalls())
	assert.Equal(t, 50, f.log.QueueLen())
	assert.Len(t, f.backedUp(t), 50)

	// still backing off: new entries reach the backup only
	logViews(ctx, f.log, 2)
	assert.Equal(t, 1, f.sink.InsertCalls())
	assert.Equal(t, 52, f.log.QueueLen())
	assert.Len(t, f.backedUp(t), 52)

	f.sink.SetFailure(nil)
	f.log.Flush(ctx)

	sent := f.sink.Entries()
	require.Len(t, sent, 52)
	assert.Equal(t, model.ActionSessionStart, sent[0].Action)
	assert.Zero(t, f.log.QueueLen())
	assert.Len(t, f.backedUp(t), 52)

	seen := make(map[string]bool)
	for _, e := range sent {
		assert.False(t, seen[e.ID], "duplicate entry %s", e.ID)
		seen[e.ID] = true
	}
}

func TestBackoffGrowsAndIsCapped(t *testing.T) {
	ctx := context.Background()
	opts := defaultOptions()
	opts.MaxRetries = 100
	f := newFixture(t, opts)
	f.sink.SetFailure(errOffline)

	var got []time.Duration
	for i := 0; i < 12; i++ {
		f.log.Flush(ctx)
		got = append(got, f.log.backoff)
	}

	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 64 * time.Second, 128 * time.Second,
		256 * time.Second, maxBackoff, maxBackoff, maxBackoff,
	}, got)
}

func TestTickProbesSinkWhileBackingOff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	f.sink.SetFailure(errOffline)

	f.log.Flush(ctx)
	require.Equal(t, 1, f.sink.InsertCalls())

	f.clk.Advance(500 * time.Millisecond)
	f.log.tick(ctx)
	assert.Equal(t, 1, f.sink.InsertCalls())

	f.sink.SetFailure(nil)
	f.log.tick(ctx)
	assert.Equal(t, 2, f.sink.InsertCalls())
	assert.Len(t, f.sink.Entries(), 1)
	assert.Zero(t, f.log.backoff)
}

func TestEntriesDroppedAfterMaxRetriesStayInBackup(t *testing.T) {
	ctx := context.Background()
	opts := defaultOptions()
	opts.MaxRetries = 3
	f := newFixture(t, opts)
	f.sink.SetFailure(errOffline)

	f.log.Flush(ctx)
	f.log.Flush(ctx)
	assert.Equal(t, 1, f.log.QueueLen())

	f.log.Flush(ctx)
	assert.Zero(t, f.log.QueueLen())
	assert.Len(t, f.backedUp(t), 1)
}

func TestQueueIsCapped(t *testing.T) {
	ctx := context.Background()
	opts := defaultOptions()
	opts.MaxQueue = 10
	f := newFixture(t, opts)

	for i := 0; i < 20; i++ {
		f.log.LogPageView(ctx, "page-"+string(rune('a'+i)))
	}

	require.Equal(t, 10, f.log.QueueLen())
	f.log.Flush(ctx)
	sent := f.sink.Entries()
	require.Len(t, sent, 10)
	assert.Equal(t, "page-k", sent[0].Data["page"])
}

func TestFlushToBackupKeepsRemoteQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	logViews(ctx, f.log, 3)

	f.log.FlushToBackup(ctx)
	assert.Len(t, f.backedUp(t), 4)
	assert.Equal(t, 4, f.log.QueueLen())
	assert.Zero(t, f.sink.InsertCalls())

	f.log.Flush(ctx)
	assert.Len(t, f.backedUp(t), 4)
	assert.Len(t, f.sink.Entries(), 4)
}

func TestBackupFailureDoesNotBlockSink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	f.backup.FailWith = errors.New("quota exceeded")

	f.log.Flush(ctx)
	assert.Len(t, f.sink.Entries(), 1)
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	f.log.LogSpin(ctx, model.SpinLog{Bet: 10, Win: 0})
	f.log.LogSpin(ctx, model.SpinLog{Bet: 20, Win: 50})
	f.log.LogSpin(ctx, model.SpinLog{Bet: 30, Win: 5})
	f.log.LogFeatureUsed(ctx, "free_spins", nil)
	f.log.LogFeatureUsed(ctx, "free_spins", map[string]any{"count": 3})
	f.log.LogFeatureUsed(ctx, "autoplay", nil)

	s := f.log.GetSessionMetrics()
	assert.Equal(t, 3, s.TotalSpins)
	assert.Equal(t, 60, s.TotalBet)
	assert.Equal(t, 55, s.TotalWin)
	assert.Equal(t, -5, s.NetResult)
	assert.InDelta(t, 20.0, s.AvgBet, 1e-9)
	assert.Equal(t, 50, s.MaxWin)
	assert.Equal(t, []string{"free_spins", "autoplay"}, s.FeaturesUsed)
	assert.Nil(t, s.EndTime)

	s.FeaturesUsed[0] = "changed"
	assert.Equal(t, "free_spins", f.log.GetSessionMetrics().FeaturesUsed[0])
}

func TestAnalyzeRTPBoundary(t *testing.T) {
	cases := []struct {
		name      string
		win       int
		variance  string
		compliant bool
	}{
		{"at tolerance", 930, "0.03", true},
		{"below target at tolerance", 870, "0.03", true},
		{"over tolerance", 940, "0.04", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, defaultOptions())
			f.log.LogSpin(ctx, model.SpinLog{Bet: 600, Win: tc.win})
			f.log.LogSpin(ctx, model.SpinLog{Bet: 400, Win: 0})

			rtp, err := f.log.AnalyzeRTP(ctx, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, 2, rtp.SpinCount)
			assert.True(t, rtp.TotalBet.Equal(decimal.NewFromInt(1000)))
			assert.True(t, rtp.TargetRTP.Equal(decimal.RequireFromString("0.9")))
			assert.Equal(t, tc.variance, rtp.Variance.String())
			assert.Equal(t, tc.compliant, rtp.Compliant)
		})
	}
}

func TestAnalyzeRTPTimeframe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	f.log.LogSpin(ctx, model.SpinLog{Bet: 100, Win: 500})
	f.log.Flush(ctx)
	f.clk.Advance(2 * time.Hour)
	f.log.LogSpin(ctx, model.SpinLog{Bet: 100, Win: 90})

	recent, err := f.log.AnalyzeRTP(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, recent.SpinCount)
	assert.True(t, recent.Compliant)

	all, err := f.log.AnalyzeRTP(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, all.SpinCount)
	assert.False(t, all.Compliant)
}

func TestAnalyzeRTPWithoutSpins(t *testing.T) {
	f := newFixture(t, defaultOptions())

	rtp, err := f.log.AnalyzeRTP(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, rtp.SpinCount)
	assert.True(t, rtp.ActualRTP.IsZero())
	assert.True(t, rtp.Compliant)
}

func TestDecimalFieldAcceptsDecodedJSON(t *testing.T) {
	v, ok := decimalField(map[string]any{"bet": float64(250)}, "bet")
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(250)))

	_, ok = decimalField(map[string]any{"bet": true}, "bet")
	assert.False(t, ok)
}

func TestComplianceReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	f.log.LogSpin(ctx, model.SpinLog{Bet: 100, Win: 300})
	f.log.LogAlert(ctx, "behavior", string(model.AlertRapidBetting), "high", "fast")
	f.log.LogAlert(ctx, "behavior", string(model.AlertRapidBetting), "high", "fast again")
	f.log.LogAlert(ctx, "behavior", string(model.AlertBotLike), "high", "pattern")

	report, err := f.log.GenerateComplianceReport(ctx)
	require.NoError(t, err)

	assert.Equal(t, "user-1", report.UserID)
	assert.Equal(t, 1, report.TotalSpins)
	assert.Equal(t, map[string]int{"rapid_betting": 2, "bot_like": 1}, report.AlertCounts)
	assert.False(t, report.RTP.Compliant)
	require.Len(t, report.Recommendations, 3)
	assert.Contains(t, report.Recommendations[0], "300.0%")
	assert.Contains(t, report.Recommendations[1], "2 time(s)")
}

func TestComplianceReportClean(t *testing.T) {
	f := newFixture(t, defaultOptions())

	report, err := f.log.GenerateComplianceReport(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.AlertCounts)
	assert.Equal(t, []string{"No compliance concerns for this session."}, report.Recommendations)
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	f.log.LogSpin(ctx, model.SpinLog{Bet: 10, Win: 20})
	f.clk.Advance(45 * time.Minute)

	s, err := f.log.EndSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, epoch.Add(45*time.Minute), *s.EndTime)

	sent := f.sink.Entries()
	require.Len(t, sent, 3)
	last := sent[2]
	assert.Equal(t, model.ActionSessionEnd, last.Action)
	assert.Equal(t, int64(2700), last.Data["durationSeconds"])

	stored, ok := f.sink.Session("session-1")
	require.True(t, ok)
	assert.Equal(t, 1, stored.TotalSpins)

	_, err = f.log.EndSession(ctx)
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestGetRecentLogsLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	logViews(ctx, f.log, 5)
	f.log.Flush(ctx)
	f.log.LogSettingsChange(ctx, "sound", true, false)

	logs, err := f.log.GetRecentLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionPageView, logs[0].Action)
	assert.Equal(t, model.ActionSettingsChange, logs[1].Action)
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	f.log.Start(ctx)
	f.log.Start(ctx)
	assert.Equal(t, 1, f.clk.Pending())

	f.log.Stop(ctx)
	assert.Zero(t, f.clk.Pending())
	assert.Len(t, f.backedUp(t), 1)
	assert.Zero(t, f.sink.InsertCalls())
}

func TestStopReleasesQueuedGauge(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	sink := audit_sink_repo.NewMemoryRepository()
	sink.SetFailure(errOffline)
	backup := audit_backup_repo.NewMemoryRepository(1000)
	l := NewLogger(Session{UserID: "user-1", SessionID: "session-1"}, defaultOptions(),
		sink, backup, clock.NewFake(epoch), zaptest.NewLogger(t), m)

	logViews(ctx, l, 3)
	l.Flush(ctx)
	require.Equal(t, 4, l.QueueLen())
	assert.Equal(t, 4.0, gaugeValue(t, m.AuditQueued))

	l.Stop(ctx)
	assert.Zero(t, l.QueueLen())
	assert.Zero(t, gaugeValue(t, m.AuditQueued))

	stored, err := backup.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, g.Write(&pb))
	return pb.GetGauge().GetValue()
}
