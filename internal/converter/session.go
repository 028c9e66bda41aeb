package converter

import (
	"slices"

	"zodiac_backend/internal/api/dto/session"
	"zodiac_backend/internal/model"
)

func ToDeviceInfo(req session.StartRequest, userAgent string) model.DeviceInfo {
	return model.DeviceInfo{
		UserAgent: userAgent,
		Platform:  req.Platform,
		Language:  req.Language,
	}
}

func ToStartResponse(s model.PlaySession) session.StartResponse {
	return session.StartResponse{
		PlayerID:    s.PlayerID,
		SessionID:   s.SessionID,
		DeviceID:    s.DeviceID,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	}
}

func ToSessionMetricsResponse(m model.SessionMetrics) session.MetricsResponse {
	features := slices.Clone(m.FeaturesUsed)
	if features == nil {
		features = []string{}
	}
	return session.MetricsResponse{
		UserID:       m.UserID,
		SessionID:    m.SessionID,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		TotalSpins:   m.TotalSpins,
		TotalBet:     m.TotalBet,
		TotalWin:     m.TotalWin,
		NetResult:    m.NetResult,
		AvgBet:       m.AvgBet,
		MaxWin:       m.MaxWin,
		FeaturesUsed: features,
	}
}
