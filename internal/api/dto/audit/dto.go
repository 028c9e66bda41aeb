package audit

import (
	"time"

	"github.com/shopspring/decimal"

	"zodiac_backend/internal/api/dto/session"
)

type EventRequest struct {
	Action string         `json:"action"` // feature_used, settings_change, page_view, balance_change
	Data   map[string]any `json:"data"`
}

type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Language  string `json:"language,omitempty"`
}

type LogEntryResponse struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	Data       map[string]any `json:"data,omitempty"`
	SessionID  string         `json:"session_id"`
	DeviceInfo *DeviceInfo    `json:"device_info,omitempty"`
}

type RTPResponse struct {
	TimeframeSec int64           `json:"timeframe_sec"`
	SpinCount    int             `json:"spin_count"`
	TotalBet     decimal.Decimal `json:"total_bet"`
	TotalWin     decimal.Decimal `json:"total_win"`
	ActualRTP    decimal.Decimal `json:"actual_rtp"`
	TargetRTP    decimal.Decimal `json:"target_rtp"`
	Variance     decimal.Decimal `json:"variance"`
	Compliant    bool            `json:"compliant"`
}

type ReportResponse struct {
	GeneratedAt     time.Time               `json:"generated_at"`
	UserID          string                  `json:"user_id"`
	SessionID       string                  `json:"session_id"`
	RTP             RTPResponse             `json:"rtp"`
	TotalSpins      int                     `json:"total_spins"`
	AlertCounts     map[string]int          `json:"alert_counts"`
	Recommendations []string                `json:"recommendations"`
	Session         session.MetricsResponse `json:"session"`
}
