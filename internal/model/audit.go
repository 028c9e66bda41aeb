package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditAction string

const (
	ActionSpin           AuditAction = "spin"
	ActionSpinDenied     AuditAction = "spin_denied"
	ActionBalanceChange  AuditAction = "balance_change"
	ActionFeatureUsed    AuditAction = "feature_used"
	ActionSettingsChange AuditAction = "settings_change"
	ActionAlert          AuditAction = "alert"
	ActionPageView       AuditAction = "page_view"
	ActionSessionStart   AuditAction = "session_start"
	ActionSessionEnd     AuditAction = "session_end"
)

type AuditLogEntry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"user_id"`
	Action     AuditAction    `json:"action"`
	Data       map[string]any `json:"data,omitempty"`
	SessionID  string         `json:"session_id"`
	DeviceInfo *DeviceInfo    `json:"device_info,omitempty"`
}

type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Language  string `json:"language,omitempty"`
}

type SessionMetrics struct {
	UserID       string
	SessionID    string
	StartTime    time.Time
	EndTime      *time.Time
	TotalSpins   int
	TotalBet     int
	TotalWin     int
	NetResult    int
	AvgBet       float64
	MaxWin       int
	FeaturesUsed []string
}

type SpinLog struct {
	Bet          int
	Win          int
	BalanceAfter int
	Symbols      []string
	Multiplier   float64
	FreeSpin     bool
}

type RTPAnalysis struct {
	Timeframe time.Duration
	SpinCount int
	TotalBet  decimal.Decimal
	TotalWin  decimal.Decimal
	ActualRTP decimal.Decimal
	TargetRTP decimal.Decimal
	Variance  decimal.Decimal
	Compliant bool
}

type ComplianceReport struct {
	GeneratedAt     time.Time
	UserID          string
	SessionID       string
	RTP             RTPAnalysis
	TotalSpins      int
	AlertCounts     map[string]int
	Recommendations []string
	Session         SessionMetrics
}
