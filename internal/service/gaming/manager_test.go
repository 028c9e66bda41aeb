package gaming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"zodiac_backend/internal/config"
	"zodiac_backend/internal/config/env"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository/gaming_state_repo"
	"zodiac_backend/pkg/clock"
)

const testPlayer = "player-1"

var epoch = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, tweak func(*env.GamingDocument)) config.GamingConfig {
	t.Helper()
	doc := env.DefaultGamingDocument()
	doc.ResponsibleGaming.ResetTimezone = "UTC"
	if tweak != nil {
		tweak(&doc)
	}
	cfg, err := env.NewGamingConfig(doc)
	require.NoError(t, err)
	return cfg
}

type fixture struct {
	mgr  *Manager
	repo *gaming_state_repo.MemoryRepo
	clk  *clock.Fake
}

func newFixture(t *testing.T, cfg config.GamingConfig, seed *model.ResponsibleGamingState) fixture {
	t.Helper()
	repo := gaming_state_repo.NewMemoryRepository()
	if seed != nil {
		require.NoError(t, repo.SaveState(context.Background(), testPlayer, seed))
	}
	clk := clock.NewFake(epoch)
	mgr := NewManager(context.Background(), testPlayer, cfg, repo, clk, zaptest.NewLogger(t), nil)
	t.Cleanup(mgr.Stop)
	return fixture{mgr: mgr, repo: repo, clk: clk}
}

func findAlert(alerts []model.GameAlert, id string) (model.GameAlert, bool) {
	for _, a := range alerts {
		if a.ID == id {
			return a, true
		}
	}
	return model.GameAlert{}, false
}

func TestDailyResetRunsOncePerDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(t, nil), nil)

	require.True(t, f.mgr.OnSpin(ctx, 10))
	f.clk.Advance(2 * time.Second)
	require.True(t, f.mgr.OnSpin(ctx, 10))

	assert.Equal(t, 2, f.mgr.GetState(ctx).DailySpinCount)
	assert.Equal(t, 2, f.mgr.GetState(ctx).DailySpinCount)

	f.clk.Set(time.Date(2026, 5, 5, 0, 0, 1, 0, time.UTC))
	state := f.mgr.GetState(ctx)
	assert.Zero(t, state.DailySpinCount)
	assert.Zero(t, state.DailyCoinsSpent)
	assert.Zero(t, state.WarningLevel)
	assert.Equal(t, "2026-05-05", state.LastDailyReset)

	require.True(t, f.mgr.OnSpin(ctx, 10))
	f.clk.Advance(time.Hour)
	assert.Equal(t, 1, f.mgr.GetState(ctx).DailySpinCount)
}

func TestDailyResetUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.ResponsibleGaming.ResetTimezone = "Asia/Tokyo"
	})
	f := newFixture(t, cfg, nil)

	require.True(t, f.mgr.OnSpin(ctx, 10))
	// 18:00 UTC is 03:00 next day in Tokyo, so the date has already moved.
	assert.Equal(t, "2026-05-05", f.mgr.GetState(ctx).LastDailyReset)

	f.clk.Set(time.Date(2026, 5, 5, 14, 59, 0, 0, time.UTC))
	assert.Equal(t, 1, f.mgr.GetState(ctx).DailySpinCount)

	f.clk.Set(time.Date(2026, 5, 5, 15, 0, 1, 0, time.UTC))
	assert.Zero(t, f.mgr.GetState(ctx).DailySpinCount)
}

func TestSpinGatingAgainstDailyLimit(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.BettingLimits.DailyLimit = 1000
	})
	f := newFixture(t, cfg, &model.ResponsibleGamingState{
		DailyCoinsSpent: 950,
		LastDailyReset:  "2026-05-04",
	})

	decision := f.mgr.CheckSpin(ctx, 100)
	assert.False(t, decision.Allowed)
	assert.Equal(t, model.DenyDailyLimit, decision.Reason)
	assert.Equal(t, 950, f.mgr.GetState(ctx).DailyCoinsSpent)

	alert, ok := findAlert(f.mgr.GetAlerts(), alertDailyLimit)
	require.True(t, ok)
	assert.Equal(t, model.GameAlertMandatory, alert.Type)
	assert.False(t, alert.CanDismiss)
	assert.Equal(t, model.WarningLevelMandatory, f.mgr.GetState(ctx).WarningLevel)

	assert.True(t, f.mgr.OnSpin(ctx, 40))
	assert.Equal(t, 990, f.mgr.GetState(ctx).DailyCoinsSpent)
}

func TestCooldownBetweenSpins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(t, nil), nil)

	require.True(t, f.mgr.OnSpin(ctx, 10))
	f.clk.Advance(400 * time.Millisecond)

	decision := f.mgr.CheckSpin(ctx, 10)
	assert.False(t, decision.Allowed)
	assert.Equal(t, model.DenyCooldown, decision.Reason)
	assert.Equal(t, 600*time.Millisecond, decision.RetryAfter)

	f.clk.Advance(600 * time.Millisecond)
	assert.True(t, f.mgr.OnSpin(ctx, 10))
	assert.Equal(t, 2, f.mgr.GetState(ctx).DailySpinCount)
}

func TestMandatoryBreakLatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(t, nil), nil)

	f.mgr.TakeMandatoryBreak(ctx)
	state := f.mgr.GetState(ctx)
	assert.True(t, state.MandatoryBreak)
	assert.Zero(t, state.ContinuousPlayTime)

	for i := 0; i < 14; i++ {
		decision := f.mgr.CheckSpin(ctx, 10)
		require.False(t, decision.Allowed)
		assert.Equal(t, model.DenyMandatoryBreak, decision.Reason)
		f.clk.Advance(time.Minute)
	}
	f.clk.Advance(59 * time.Second)
	assert.False(t, f.mgr.OnSpin(ctx, 10))

	f.clk.Advance(time.Second)
	assert.True(t, f.mgr.OnSpin(ctx, 10))

	alerts := f.mgr.GetAlerts()
	_, onBreak := findAlert(alerts, alertMandatoryBreak)
	assert.False(t, onBreak)
	done, ok := findAlert(alerts, alertBreakComplete)
	require.True(t, ok)
	assert.Equal(t, model.GameAlertInfo, done.Type)
}

func TestMandatoryBreakSurvivesRestart(t *testing.T) {
	ctx := context.Background()

	t.Run("still running", func(t *testing.T) {
		f := newFixture(t, testConfig(t, nil), &model.ResponsibleGamingState{
			MandatoryBreak: true,
			BreakStartedAt: epoch.Add(-10 * time.Minute),
			LastDailyReset: "2026-05-04",
		})

		decision := f.mgr.CheckSpin(ctx, 10)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 5*time.Minute, decision.RetryAfter)

		f.clk.Advance(5 * time.Minute)
		assert.True(t, f.mgr.OnSpin(ctx, 10))
	})

	t.Run("already elapsed", func(t *testing.T) {
		f := newFixture(t, testConfig(t, nil), &model.ResponsibleGamingState{
			MandatoryBreak: true,
			BreakStartedAt: epoch.Add(-20 * time.Minute),
			LastDailyReset: "2026-05-04",
		})

		assert.True(t, f.mgr.OnSpin(ctx, 10))
		assert.Zero(t, f.clk.Pending())
	})
}

func TestContinuousPlayAlertsAndForcedBreak(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.ResponsibleGaming.AlertIntervals = []int{2}
		doc.ResponsibleGaming.MaxContinuousMinutes = 3
	})
	f := newFixture(t, cfg, nil)

	play := func() {
		require.True(t, f.mgr.OnSpin(ctx, 10))
		f.clk.Advance(time.Minute)
		f.mgr.MonitorTick(ctx)
	}

	play()
	assert.Equal(t, 1, f.mgr.GetState(ctx).ContinuousPlayTime)
	assert.Empty(t, f.mgr.GetAlerts())

	play()
	warning, ok := findAlert(f.mgr.GetAlerts(), "continuous-play-2")
	require.True(t, ok)
	assert.Equal(t, model.GameAlertWarning, warning.Type)
	assert.Equal(t, model.WarningLevelWarning, f.mgr.GetState(ctx).WarningLevel)

	play()
	state := f.mgr.GetState(ctx)
	assert.True(t, state.MandatoryBreak)
	assert.Zero(t, state.ContinuousPlayTime)
	assert.Equal(t, 3, state.TotalSessionTime)
	assert.Equal(t, model.WarningLevelMandatory, state.WarningLevel)

	mandatory, ok := findAlert(f.mgr.GetAlerts(), alertMandatoryBreak)
	require.True(t, ok)
	assert.False(t, mandatory.CanDismiss)
	assert.False(t, f.mgr.OnSpin(ctx, 10))
}

func TestContinuousPlayResetsAfterGap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(t, nil), nil)

	require.True(t, f.mgr.OnSpin(ctx, 10))
	f.clk.Advance(time.Minute)
	f.mgr.MonitorTick(ctx)
	require.Equal(t, 1, f.mgr.GetState(ctx).ContinuousPlayTime)

	f.clk.Advance(5 * time.Minute)
	f.mgr.MonitorTick(ctx)
	assert.Zero(t, f.mgr.GetState(ctx).ContinuousPlayTime)
}

func TestDailySpendWarningIsOneTime(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.BettingLimits.DailyLimit = 1000
	})
	f := newFixture(t, cfg, nil)

	require.True(t, f.mgr.OnSpin(ctx, 799))
	f.mgr.MonitorTick(ctx)
	_, ok := findAlert(f.mgr.GetAlerts(), alertDailyLimitWarning)
	assert.False(t, ok)

	f.clk.Advance(2 * time.Second)
	require.True(t, f.mgr.OnSpin(ctx, 1))
	f.mgr.MonitorTick(ctx)
	warning, ok := findAlert(f.mgr.GetAlerts(), alertDailyLimitWarning)
	require.True(t, ok)
	assert.True(t, warning.CanDismiss)

	f.mgr.DismissAlert(alertDailyLimitWarning)
	f.mgr.MonitorTick(ctx)
	_, ok = findAlert(f.mgr.GetAlerts(), alertDailyLimitWarning)
	assert.False(t, ok)
	assert.True(t, f.mgr.GetState(ctx).DailyWarningIssued)
}

func TestSpinRateWarning(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.ResponsibleGaming.MaxSpinsPer30Min = 5
		doc.BettingLimits.CooldownSeconds = 0
	})
	f := newFixture(t, cfg, nil)

	for i := 0; i < 5; i++ {
		require.True(t, f.mgr.OnSpin(ctx, 1))
	}
	f.mgr.MonitorTick(ctx)
	_, ok := findAlert(f.mgr.GetAlerts(), alertSpinRate)
	assert.False(t, ok)

	require.True(t, f.mgr.OnSpin(ctx, 1))
	f.mgr.MonitorTick(ctx)
	_, ok = findAlert(f.mgr.GetAlerts(), alertSpinRate)
	assert.True(t, ok)
}

func TestRecreationalReminderEveryFiftySpins(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.BettingLimits.CooldownSeconds = 0
	})
	f := newFixture(t, cfg, nil)

	notified := 0
	f.mgr.Subscribe(func([]model.GameAlert) { notified++ })

	for i := 0; i < 49; i++ {
		require.True(t, f.mgr.OnSpin(ctx, 1))
	}
	_, ok := findAlert(f.mgr.GetAlerts(), alertReminder)
	assert.False(t, ok)
	assert.Zero(t, notified)

	require.True(t, f.mgr.OnSpin(ctx, 1))
	reminder, ok := findAlert(f.mgr.GetAlerts(), alertReminder)
	require.True(t, ok)
	assert.Equal(t, model.GameAlertInfo, reminder.Type)
	assert.True(t, reminder.CanDismiss)
	assert.Equal(t, 1, notified)

	f.clk.Advance(infoDuration)
	_, ok = findAlert(f.mgr.GetAlerts(), alertReminder)
	assert.False(t, ok)
}

func TestDismissIgnoresMandatoryAlerts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(t, nil), nil)
	f.mgr.TakeMandatoryBreak(ctx)

	f.mgr.DismissAlert(alertMandatoryBreak)

	_, ok := findAlert(f.mgr.GetAlerts(), alertMandatoryBreak)
	assert.True(t, ok)
}

func TestSubscribersReceiveFullList(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, func(doc *env.GamingDocument) {
		doc.BettingLimits.DailyLimit = 100
	})
	f := newFixture(t, cfg, nil)

	f.mgr.Subscribe(func([]model.GameAlert) { panic("render failed") })
	var lists [][]model.GameAlert
	unsubscribe := f.mgr.Subscribe(func(alerts []model.GameAlert) { lists = append(lists, alerts) })

	require.False(t, f.mgr.OnSpin(ctx, 101))
	require.NotPanics(t, func() { f.mgr.TakeMandatoryBreak(ctx) })

	require.Len(t, lists, 2)
	assert.Len(t, lists[0], 1)
	assert.Len(t, lists[1], 2)

	unsubscribe()
	f.clk.Advance(BreakDuration)
	assert.Len(t, lists, 2)
}

func TestMalformedStateIsCleared(t *testing.T) {
	ctx := context.Background()
	repo := gaming_state_repo.NewMemoryRepository()
	repo.PutRaw(testPlayer, []byte("{not json"))

	clk := clock.NewFake(epoch)
	mgr := NewManager(ctx, testPlayer, testConfig(t, nil), repo, clk, zaptest.NewLogger(t), nil)

	state := mgr.GetState(ctx)
	assert.Zero(t, state.DailySpinCount)
	assert.False(t, state.MandatoryBreak)

	stored, err := repo.GetState(ctx, testPlayer)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04", stored.LastDailyReset)
}

type brokenRepo struct{}

var errStorage = errors.New("quota exceeded")

func (brokenRepo) GetState(context.Context, string) (*model.ResponsibleGamingState, error) {
	return nil, errStorage
}

func (brokenRepo) SaveState(context.Context, string, *model.ResponsibleGamingState) error {
	return errStorage
}

func (brokenRepo) DeleteState(context.Context, string) error {
	return errStorage
}

func TestStorageFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(epoch)
	mgr := NewManager(ctx, testPlayer, testConfig(t, nil), brokenRepo{}, clk, zaptest.NewLogger(t), nil)

	assert.True(t, mgr.OnSpin(ctx, 10))
	assert.Equal(t, 1, mgr.GetState(ctx).DailySpinCount)
}

func TestHighBetConfirmation(t *testing.T) {
	f := newFixture(t, testConfig(t, nil), nil)

	small := f.mgr.RequestConfirmation(HighBetThreshold)
	assert.False(t, small.Required)
	assert.Equal(t, model.ConfirmationApproved, small.Status)

	c := f.mgr.RequestConfirmation(HighBetThreshold + 1)
	require.True(t, c.Required)
	assert.Equal(t, model.ConfirmationPending, c.Status)
	assert.ErrorIs(t, f.mgr.ConsumeConfirmation(c.ID, c.Amount), ErrConfirmationNotApproved)

	resolved, err := f.mgr.ResolveConfirmation(c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ConfirmationApproved, resolved.Status)

	_, err = f.mgr.ResolveConfirmation(c.ID, false)
	assert.ErrorIs(t, err, ErrConfirmationSettled)

	assert.ErrorIs(t, f.mgr.ConsumeConfirmation(c.ID, c.Amount+1), ErrConfirmationAmount)
	require.NoError(t, f.mgr.ConsumeConfirmation(c.ID, c.Amount))
	assert.ErrorIs(t, f.mgr.ConsumeConfirmation(c.ID, c.Amount), ErrConfirmationNotFound)

	_, err = f.mgr.ResolveConfirmation("missing", true)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestPendingConfirmationsExpire(t *testing.T) {
	f := newFixture(t, testConfig(t, nil), nil)

	c := f.mgr.RequestConfirmation(1000)
	f.clk.Advance(confirmationTTL + time.Second)
	f.mgr.RequestConfirmation(1000)

	_, err := f.mgr.ResolveConfirmation(c.ID, true)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestConfirmHighBet(t *testing.T) {
	f := newFixture(t, testConfig(t, nil), nil)

	t.Run("no prompt for small bets", func(t *testing.T) {
		ok, err := f.mgr.ConfirmHighBet(context.Background(), 100, func(model.HighBetConfirmation) {
			t.Fatal("prompted for a small bet")
		})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("player approves", func(t *testing.T) {
		ok, err := f.mgr.ConfirmHighBet(context.Background(), 800, func(c model.HighBetConfirmation) {
			go func() {
				_, _ = f.mgr.ResolveConfirmation(c.ID, true)
			}()
		})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("player declines", func(t *testing.T) {
		ok, err := f.mgr.ConfirmHighBet(context.Background(), 800, func(c model.HighBetConfirmation) {
			_, _ = f.mgr.ResolveConfirmation(c.ID, false)
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("caller gives up", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var pending model.HighBetConfirmation
		ok, err := f.mgr.ConfirmHighBet(ctx, 800, func(c model.HighBetConfirmation) {
			pending = c
			cancel()
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)

		_, err = f.mgr.ResolveConfirmation(pending.ID, true)
		assert.ErrorIs(t, err, ErrConfirmationSettled)
	})

	t.Run("answered confirmation is not left behind", func(t *testing.T) {
		var pending model.HighBetConfirmation
		ok, err := f.mgr.ConfirmHighBet(context.Background(), 800, func(c model.HighBetConfirmation) {
			pending = c
			_, _ = f.mgr.ResolveConfirmation(c.ID, true)
		})
		require.NoError(t, err)
		require.True(t, ok)

		err = f.mgr.ConsumeConfirmation(pending.ID, 800)
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})

	t.Run("unanswered confirmation expires", func(t *testing.T) {
		prompted := make(chan model.HighBetConfirmation, 1)
		type result struct {
			ok  bool
			err error
		}
		done := make(chan result, 1)
		go func() {
			ok, err := f.mgr.ConfirmHighBet(context.Background(), 800, func(c model.HighBetConfirmation) {
				prompted <- c
			})
			done <- result{ok, err}
		}()

		var pending model.HighBetConfirmation
		select {
		case pending = <-prompted:
		case <-time.After(5 * time.Second):
			require.FailNow(t, "confirmation was never prompted")
		}

		f.clk.Advance(confirmationTTL + time.Second)
		f.mgr.RequestConfirmation(900)

		select {
		case r := <-done:
			assert.False(t, r.ok)
			assert.ErrorIs(t, r.err, ErrConfirmationExpired)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "ConfirmHighBet did not return after the confirmation expired")
		}

		_, err := f.mgr.ResolveConfirmation(pending.ID, true)
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, testConfig(t, nil), nil)

	f.mgr.Start(context.Background())
	f.mgr.Start(context.Background())
	assert.Equal(t, 1, f.clk.Pending())

	f.mgr.Stop()
	f.mgr.Stop()
	assert.Zero(t, f.clk.Pending())
}
