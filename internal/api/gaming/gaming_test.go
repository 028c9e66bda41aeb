package gaming

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	dto "zodiac_backend/internal/api/dto/gaming"
	"zodiac_backend/internal/config/env"
	"zodiac_backend/internal/repository/audit_backup_repo"
	"zodiac_backend/internal/repository/audit_sink_repo"
	"zodiac_backend/internal/repository/gaming_state_repo"
	"zodiac_backend/internal/service"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/internal/service/compliance"
	"zodiac_backend/pkg/clock"
)

const (
	player  = "anon_test"
	session = "sess-1"
)

func newRouter(t *testing.T, dailyLimit int) (http.Handler, *clock.Fake) {
	t.Helper()
	doc := env.DefaultGamingDocument()
	doc.ResponsibleGaming.ResetTimezone = "UTC"
	doc.BettingLimits.CooldownSeconds = 0
	doc.BettingLimits.DailyLimit = dailyLimit
	cfg, err := env.NewGamingConfig(doc)
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC))
	logger := zaptest.NewLogger(t)
	svc := compliance.NewService(
		cfg,
		audit.Options{FlushInterval: 30 * time.Second, BatchSize: 50, MaxQueue: 5000, MaxRetries: 5},
		gaming_state_repo.NewMemoryRepository(),
		audit_backup_repo.NewMemoryRepository(1000),
		audit_sink_repo.NewMemoryRepository(),
		clk,
		logger,
		nil,
	)
	t.Cleanup(func() { svc.Close(context.Background()) })

	h := NewHandler(HandlerDeps{Serv: svc, Logger: logger})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(service.WithSession(r.Context(), player, session)))
		})
	})
	r.Post("/spin", h.Spin)
	r.Post("/spin/confirmations", h.RequestConfirmation)
	r.Post("/spin/confirmations/{id}", h.ResolveConfirmation)
	r.Get("/gaming/state", h.State)
	r.Get("/gaming/alerts", h.Alerts)
	r.Delete("/gaming/alerts/{id}", h.DismissAlert)
	r.Post("/gaming/break", h.TakeBreak)
	return r, clk
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestSpinAllowedAndDenied(t *testing.T) {
	h, _ := newRouter(t, 100)

	rec := do(t, h, http.MethodPost, "/spin", dto.SpinRequest{Bet: 60, BalanceBefore: 500, BalanceAfter: 440})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.SpinResponse](t, rec).Allowed)

	rec = do(t, h, http.MethodPost, "/spin", dto.SpinRequest{Bet: 50, BalanceBefore: 440, BalanceAfter: 390})
	require.Equal(t, http.StatusOK, rec.Code)
	denied := decode[dto.SpinResponse](t, rec)
	assert.False(t, denied.Allowed)
	assert.Equal(t, "daily_limit", denied.Reason)

	rec = do(t, h, http.MethodGet, "/gaming/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[dto.StateResponse](t, rec)
	assert.Equal(t, 1, state.DailySpinCount)
	assert.Equal(t, 60, state.DailyCoinsSpent)
	assert.Equal(t, 2, state.WarningLevel)
}

func TestSpinValidation(t *testing.T) {
	h, _ := newRouter(t, 10000)

	cases := []struct {
		name string
		body any
	}{
		{"zero bet", dto.SpinRequest{Bet: 0}},
		{"negative win", dto.SpinRequest{Bet: 10, WinAmount: -1}},
		{"unknown field", map[string]any{"bet": 10, "jackpot": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/spin", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHighBetConfirmationFlow(t *testing.T) {
	h, _ := newRouter(t, 10000)

	rec := do(t, h, http.MethodPost, "/spin", dto.SpinRequest{Bet: 600, BalanceBefore: 2000, BalanceAfter: 1400})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmation_required", decode[dto.SpinResponse](t, rec).Reason)

	rec = do(t, h, http.MethodPost, "/spin/confirmations", dto.ConfirmationRequest{Amount: 100})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.ConfirmationResponse](t, rec).Required)

	rec = do(t, h, http.MethodPost, "/spin/confirmations", dto.ConfirmationRequest{Amount: 600})
	require.Equal(t, http.StatusCreated, rec.Code)
	pending := decode[dto.ConfirmationResponse](t, rec)
	require.True(t, pending.Required)
	require.NotEmpty(t, pending.ID)

	rec = do(t, h, http.MethodPost, "/spin/confirmations/"+pending.ID, dto.ResolveConfirmationRequest{Approved: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/spin/confirmations/"+pending.ID, dto.ResolveConfirmationRequest{Approved: true})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/spin", dto.SpinRequest{
		Bet: 600, BalanceBefore: 2000, BalanceAfter: 1400, ConfirmationID: pending.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.SpinResponse](t, rec).Allowed)

	rec = do(t, h, http.MethodPost, "/spin/confirmations/missing", dto.ResolveConfirmationRequest{Approved: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTakeBreakBlocksSpins(t *testing.T) {
	h, clk := newRouter(t, 10000)

	rec := do(t, h, http.MethodPost, "/gaming/break", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[dto.StateResponse](t, rec)
	assert.True(t, state.MandatoryBreak)
	require.NotNil(t, state.BreakEndsAt)

	rec = do(t, h, http.MethodPost, "/spin", dto.SpinRequest{Bet: 10})
	resp := decode[dto.SpinResponse](t, rec)
	assert.False(t, resp.Allowed)
	assert.Equal(t, "mandatory_break", resp.Reason)
	assert.Positive(t, resp.RetryAfterMs)

	rec = do(t, h, http.MethodGet, "/gaming/alerts", nil)
	alerts := decode[[]dto.AlertResponse](t, rec)
	require.NotEmpty(t, alerts)
	assert.False(t, alerts[0].CanDismiss)

	rec = do(t, h, http.MethodDelete, "/gaming/alerts/"+alerts[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/gaming/alerts", nil)
	assert.Len(t, decode[[]dto.AlertResponse](t, rec), len(alerts))

	clk.Advance(16 * time.Minute)
	rec = do(t, h, http.MethodPost, "/spin", dto.SpinRequest{Bet: 10})
	assert.True(t, decode[dto.SpinResponse](t, rec).Allowed)
}
