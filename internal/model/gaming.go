package model

import "time"

// ResponsibleGamingState is the per-player persisted responsible gaming record.
// Durations are whole minutes.
type ResponsibleGamingState struct {
	SessionStartTime   time.Time
	TotalSessionTime   int
	DailySpinCount     int
	DailyCoinsSpent    int
	ContinuousPlayTime int
	LastSpinTime       time.Time
	WarningLevel       int
	MandatoryBreak     bool
	BreakStartedAt     time.Time
	DailyWarningIssued bool
	LastDailyReset     string
}

const (
	WarningLevelNone      = 0
	WarningLevelWarning   = 1
	WarningLevelMandatory = 2
)

type GameAlertType string

const (
	GameAlertWarning   GameAlertType = "warning"
	GameAlertMandatory GameAlertType = "mandatory"
	GameAlertInfo      GameAlertType = "info"
)

// GameAlert is a user-facing responsible gaming notice.
// A zero Duration means the alert stays until dismissed or cleared.
type GameAlert struct {
	ID         string
	Type       GameAlertType
	Title      string
	Message    string
	Duration   time.Duration
	Timestamp  time.Time
	CanDismiss bool
}

type DenyReason string

const (
	DenyNone                 DenyReason = ""
	DenyMandatoryBreak       DenyReason = "mandatory_break"
	DenyDailyLimit           DenyReason = "daily_limit"
	DenyCooldown             DenyReason = "cooldown"
	DenyConfirmationRequired DenyReason = "confirmation_required"
)

type SpinDecision struct {
	Allowed    bool
	Reason     DenyReason
	RetryAfter time.Duration
}

type ConfirmationStatus string

const (
	ConfirmationPending  ConfirmationStatus = "pending"
	ConfirmationApproved ConfirmationStatus = "approved"
	ConfirmationRejected ConfirmationStatus = "rejected"
	ConfirmationConsumed ConfirmationStatus = "consumed"
)

// HighBetConfirmation is the pending half of the two-phase high bet check.
type HighBetConfirmation struct {
	ID        string
	Amount    int
	Required  bool
	Status    ConfirmationStatus
	CreatedAt time.Time
}
