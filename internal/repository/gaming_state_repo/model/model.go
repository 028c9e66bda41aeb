package model

import "time"

// GamingState is the stored form of the responsible gaming record.
type GamingState struct {
	SessionStartTime   time.Time `json:"sessionStartTime"`
	TotalSessionTime   int       `json:"totalSessionTime"` // минуты
	DailySpinCount     int       `json:"dailySpinCount"`
	DailyCoinsSpent    int       `json:"dailyCoinsSpent"`
	ContinuousPlayTime int       `json:"continuousPlayTime"` // минуты
	LastSpinTime       time.Time `json:"lastSpinTime"`
	WarningLevel       int       `json:"warningLevel"`
	MandatoryBreak     bool      `json:"mandatoryBreak"`
	BreakStartedAt     time.Time `json:"breakStartedAt"`
	DailyWarningIssued bool      `json:"dailyWarningIssued"`
	LastDailyReset     string    `json:"lastDailyReset"`
}
