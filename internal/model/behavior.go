package model

import "time"

type AlertType string

const (
	AlertRapidBetting     AlertType = "rapid_betting"
	AlertHighFrequency    AlertType = "high_frequency"
	AlertBotLike          AlertType = "bot_like"
	AlertExcessiveSession AlertType = "excessive_session"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SpinSample is one observed spin in the behavior monitor's rolling history.
type SpinSample struct {
	Timestamp time.Time
	BetAmount int
	Won       bool
	WinAmount int
}

// BehaviorMetrics is derived on demand from the trailing 30 minutes of play.
type BehaviorMetrics struct {
	SpinsPerMinute    float64
	AvgBetSize        float64
	SessionDuration   time.Duration
	WinLossRatio      float64
	RepetitivePattern bool
	RapidBetting      bool
	LastUpdate        time.Time
}

type BehaviorAlert struct {
	ID        string
	Type      AlertType
	Severity  Severity
	Message   string
	Timestamp time.Time
	Metrics   BehaviorMetrics
}

// BehaviorAuditData is the snapshot handed to the audit pipeline.
type BehaviorAuditData struct {
	SessionStart time.Time
	SpinCount    int
	Metrics      BehaviorMetrics
	Alerts       []BehaviorAlert
}
