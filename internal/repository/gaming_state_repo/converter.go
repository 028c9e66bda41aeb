package gaming_state_repo

import (
	"zodiac_backend/internal/model"
	repoModel "zodiac_backend/internal/repository/gaming_state_repo/model"
)

func toRepo(s *model.ResponsibleGamingState) repoModel.GamingState {
	return repoModel.GamingState{
		SessionStartTime:   s.SessionStartTime,
		TotalSessionTime:   s.TotalSessionTime,
		DailySpinCount:     s.DailySpinCount,
		DailyCoinsSpent:    s.DailyCoinsSpent,
		ContinuousPlayTime: s.ContinuousPlayTime,
		LastSpinTime:       s.LastSpinTime,
		WarningLevel:       s.WarningLevel,
		MandatoryBreak:     s.MandatoryBreak,
		BreakStartedAt:     s.BreakStartedAt,
		DailyWarningIssued: s.DailyWarningIssued,
		LastDailyReset:     s.LastDailyReset,
	}
}

func fromRepo(s repoModel.GamingState) *model.ResponsibleGamingState {
	return &model.ResponsibleGamingState{
		SessionStartTime:   s.SessionStartTime,
		TotalSessionTime:   s.TotalSessionTime,
		DailySpinCount:     s.DailySpinCount,
		DailyCoinsSpent:    s.DailyCoinsSpent,
		ContinuousPlayTime: s.ContinuousPlayTime,
		LastSpinTime:       s.LastSpinTime,
		WarningLevel:       s.WarningLevel,
		MandatoryBreak:     s.MandatoryBreak,
		BreakStartedAt:     s.BreakStartedAt,
		DailyWarningIssued: s.DailyWarningIssued,
		LastDailyReset:     s.LastDailyReset,
	}
}
