package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"zodiac_backend/internal/model"
)

var (
	// TargetRTP Заявленный возврат игроку
	TargetRTP = decimal.RequireFromString("0.9")
	// RTPTolerance Допустимое отклонение, граница включительно
	RTPTolerance = decimal.RequireFromString("0.03")
)

const (
	reportTimeframe  = 24 * time.Hour
	longSessionLimit = 2 * time.Hour
)

// GetRecentLogs returns up to limit of the latest entries, oldest first.
// The backup is read together with entries that have not reached it yet.
func (l *Logger) GetRecentLogs(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	entries, err := l.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (l *Logger) readAll(ctx context.Context) ([]model.AuditLogEntry, error) {
	stored, err := l.backup.List(ctx, l.session.UserID)
	if err != nil {
		return nil, fmt.Errorf("read audit backup: %w", err)
	}

	l.mtx.Lock()
	for _, q := range l.queue {
		if !q.backedUp {
			stored = append(stored, q.entry)
		}
	}
	l.mtx.Unlock()
	return stored, nil
}

// AnalyzeRTP sums the spins of the trailing timeframe and compares the
// actual return to TargetRTP. A non-positive timeframe covers everything.
func (l *Logger) AnalyzeRTP(ctx context.Context, timeframe time.Duration) (model.RTPAnalysis, error) {
	entries, err := l.readAll(ctx)
	if err != nil {
		return model.RTPAnalysis{}, err
	}
	return l.analyzeRTP(entries, timeframe), nil
}

func (l *Logger) analyzeRTP(entries []model.AuditLogEntry, timeframe time.Duration) model.RTPAnalysis {
	since := time.Time{}
	if timeframe > 0 {
		since = l.clock.Now().Add(-timeframe)
	}

	res := model.RTPAnalysis{
		Timeframe: timeframe,
		TotalBet:  decimal.Zero,
		TotalWin:  decimal.Zero,
		ActualRTP: decimal.Zero,
		TargetRTP: TargetRTP,
		Variance:  decimal.Zero,
		Compliant: true,
	}

	for _, e := range entries {
		if e.Action != model.ActionSpin || e.Timestamp.Before(since) {
			continue
		}
		bet, okBet := decimalField(e.Data, "bet")
		win, okWin := decimalField(e.Data, "win")
		if !okBet || !okWin {
			l.logger.Debug("skipping spin entry without amounts", zap.String("id", e.ID))
			continue
		}
		res.SpinCount++
		res.TotalBet = res.TotalBet.Add(bet)
		res.TotalWin = res.TotalWin.Add(win)
	}

	if res.TotalBet.IsPositive() {
		res.ActualRTP = res.TotalWin.Div(res.TotalBet)
		res.Variance = res.ActualRTP.Sub(TargetRTP).Abs()
		res.Compliant = res.Variance.LessThanOrEqual(RTPTolerance)
	}
	return res
}

// decimalField reads a numeric value that may have gone through JSON.
func decimalField(data map[string]any, key string) (decimal.Decimal, bool) {
	switch v := data[key].(type) {
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// GenerateComplianceReport bundles the RTP analysis of the last day, the
// alert histogram and recommendations for the session.
func (l *Logger) GenerateComplianceReport(ctx context.Context) (model.ComplianceReport, error) {
	entries, err := l.readAll(ctx)
	if err != nil {
		return model.ComplianceReport{}, err
	}

	counts := make(map[string]int)
	for _, e := range entries {
		if e.Action != model.ActionAlert {
			continue
		}
		if t, ok := e.Data["type"].(string); ok {
			counts[t]++
		}
	}

	session := l.GetSessionMetrics()
	rtp := l.analyzeRTP(entries, reportTimeframe)

	return model.ComplianceReport{
		GeneratedAt:     l.clock.Now(),
		UserID:          l.session.UserID,
		SessionID:       l.session.SessionID,
		RTP:             rtp,
		TotalSpins:      session.TotalSpins,
		AlertCounts:     counts,
		Recommendations: l.recommendations(rtp, counts, session),
		Session:         session,
	}, nil
}

func (l *Logger) recommendations(rtp model.RTPAnalysis, counts map[string]int, s model.SessionMetrics) []string {
	var out []string

	if !rtp.Compliant {
		out = append(out, fmt.Sprintf(
			"Observed RTP %s%% deviates from the %s%% target by %s points; review the paytable.",
			percent(rtp.ActualRTP), percent(rtp.TargetRTP), percent(rtp.Variance)))
	}
	if n := counts[string(model.AlertRapidBetting)]; n > 0 {
		out = append(out, "Rapid betting detected "+strconv.Itoa(n)+" time(s); consider a longer spin cooldown.")
	}
	if counts[string(model.AlertBotLike)] > 0 {
		out = append(out, "Repetitive bet pattern detected; review the session for automated play.")
	}
	if counts[string(model.AlertHighFrequency)] > 0 {
		out = append(out, "High spin frequency; encourage the player to slow down.")
	}

	end := l.clock.Now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Sub(s.StartTime) > longSessionLimit || counts[string(model.AlertExcessiveSession)] > 0 {
		out = append(out, "Long session; remind the player to take regular breaks.")
	}

	if len(out) == 0 {
		out = append(out, "No compliance concerns for this session.")
	}
	return out
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1)
}
