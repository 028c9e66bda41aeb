package session

import "time"

type StartRequest struct {
	DeviceID string `json:"device_id"` // Пусто для нового устройства
	Platform string `json:"platform"`
	Language string `json:"language"`
}

type StartResponse struct {
	PlayerID    string    `json:"player_id"`
	SessionID   string    `json:"session_id"`
	DeviceID    string    `json:"device_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type MetricsResponse struct {
	UserID       string     `json:"user_id"`
	SessionID    string     `json:"session_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	TotalSpins   int        `json:"total_spins"`
	TotalBet     int        `json:"total_bet"`
	TotalWin     int        `json:"total_win"`
	NetResult    int        `json:"net_result"`
	AvgBet       float64    `json:"avg_bet"`
	MaxWin       int        `json:"max_win"`
	FeaturesUsed []string   `json:"features_used"`
}
