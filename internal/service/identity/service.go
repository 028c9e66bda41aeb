package identity

import (
	"go.uber.org/zap"

	"zodiac_backend/internal/config"
	"zodiac_backend/internal/repository"
	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/clock"
)

type serv struct {
	playerRepo repository.PlayerRepository
	compliance service.ComplianceService
	jwtConfig  config.JWTConfig
	clock      clock.Clock
	logger     *zap.Logger
}

// NewService Анонимная идентификация игроков по устройству
func NewService(
	playerRepo repository.PlayerRepository,
	compliance service.ComplianceService,
	jwtConfig config.JWTConfig,
	clk clock.Clock,
	logger *zap.Logger,
) service.IdentityService {
	return &serv{
		playerRepo: playerRepo,
		compliance: compliance,
		jwtConfig:  jwtConfig,
		clock:      clk,
		logger:     logger.Named("identity"),
	}
}
