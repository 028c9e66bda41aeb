package converter

import (
	"zodiac_backend/internal/api/dto/audit"
	"zodiac_backend/internal/model"
)

func ToLogEntryResponse(e model.AuditLogEntry) audit.LogEntryResponse {
	res := audit.LogEntryResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		Action:    string(e.Action),
		Data:      e.Data,
		SessionID: e.SessionID,
	}
	if e.DeviceInfo != nil {
		res.DeviceInfo = &audit.DeviceInfo{
			UserAgent: e.DeviceInfo.UserAgent,
			Platform:  e.DeviceInfo.Platform,
			Language:  e.DeviceInfo.Language,
		}
	}
	return res
}

func ToLogEntriesResponse(entries []model.AuditLogEntry) []audit.LogEntryResponse {
	result := make([]audit.LogEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = ToLogEntryResponse(e)
	}
	return result
}

func ToRTPResponse(a model.RTPAnalysis) audit.RTPResponse {
	return audit.RTPResponse{
		TimeframeSec: int64(a.Timeframe.Seconds()),
		SpinCount:    a.SpinCount,
		TotalBet:     a.TotalBet,
		TotalWin:     a.TotalWin,
		ActualRTP:    a.ActualRTP,
		TargetRTP:    a.TargetRTP,
		Variance:     a.Variance,
		Compliant:    a.Compliant,
	}
}

func ToReportResponse(r model.ComplianceReport) audit.ReportResponse {
	return audit.ReportResponse{
		GeneratedAt:     r.GeneratedAt,
		UserID:          r.UserID,
		SessionID:       r.SessionID,
		RTP:             ToRTPResponse(r.RTP),
		TotalSpins:      r.TotalSpins,
		AlertCounts:     r.AlertCounts,
		Recommendations: r.Recommendations,
		Session:         ToSessionMetricsResponse(r.Session),
	}
}
