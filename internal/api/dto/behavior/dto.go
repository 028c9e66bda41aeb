package behavior

import "time"

type MetricsResponse struct {
	SpinsPerMinute     float64   `json:"spins_per_minute"`
	AvgBetSize         float64   `json:"avg_bet_size"`
	SessionDurationSec int64     `json:"session_duration_sec"`
	WinLossRatio       float64   `json:"win_loss_ratio"`
	RepetitivePattern  bool      `json:"repetitive_pattern"`
	RapidBetting       bool      `json:"rapid_betting"`
	LastUpdate         time.Time `json:"last_update"`
}

type AlertResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`     // rapid_betting, high_frequency, bot_like, excessive_session
	Severity  string          `json:"severity"` // low, medium, high
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Metrics   MetricsResponse `json:"metrics"`
}

type AuditResponse struct {
	SessionStart time.Time       `json:"session_start"`
	SpinCount    int             `json:"spin_count"`
	Metrics      MetricsResponse `json:"metrics"`
	Alerts       []AlertResponse `json:"alerts"`
}
