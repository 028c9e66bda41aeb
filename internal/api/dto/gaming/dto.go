package gaming

import (
	"time"

	"zodiac_backend/internal/api/dto/behavior"
)

type SpinRequest struct {
	Bet            int      `json:"bet"` // Ставка (>0)
	Won            bool     `json:"won"`
	WinAmount      int      `json:"win_amount"`
	BalanceBefore  int      `json:"balance_before"`
	BalanceAfter   int      `json:"balance_after"`
	Symbols        []string `json:"symbols"`
	Multiplier     float64  `json:"multiplier"`
	FreeSpin       bool     `json:"free_spin"`
	ConfirmationID string   `json:"confirmation_id"` // Для ставок выше порога
}

type SpinResponse struct {
	Allowed      bool                     `json:"allowed"`
	Reason       string                   `json:"reason,omitempty"`
	RetryAfterMs int64                    `json:"retry_after_ms,omitempty"`
	Metrics      behavior.MetricsResponse `json:"metrics"`
	Alerts       []AlertResponse          `json:"alerts"`
}

type ConfirmationRequest struct {
	Amount int `json:"amount"`
}

type ResolveConfirmationRequest struct {
	Approved bool `json:"approved"`
}

type ConfirmationResponse struct {
	ID        string    `json:"id,omitempty"`
	Amount    int       `json:"amount"`
	Required  bool      `json:"required"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type StateResponse struct {
	SessionStartTime   time.Time  `json:"session_start_time"`
	TotalSessionTime   int        `json:"total_session_time"` // минуты
	DailySpinCount     int        `json:"daily_spin_count"`
	DailyCoinsSpent    int        `json:"daily_coins_spent"`
	ContinuousPlayTime int        `json:"continuous_play_time"` // минуты
	LastSpinTime       *time.Time `json:"last_spin_time,omitempty"`
	WarningLevel       int        `json:"warning_level"`
	MandatoryBreak     bool       `json:"mandatory_break"`
	BreakEndsAt        *time.Time `json:"break_ends_at,omitempty"`
	LastDailyReset     string     `json:"last_daily_reset"`
}

type AlertResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // warning, mandatory, info
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	CanDismiss bool      `json:"can_dismiss"`
}
