package config

import (
	"time"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type AppConfig interface {
	IsProduction() bool
}

type HTTPConfig interface {
	Address() string
	AllowedOrigins() []string
}

type PGConfig interface {
	DSN() string
}

type RedisConfig interface {
	Addr() string
	Password() string
	DB() int
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
}

// GamingConfig holds the responsible gaming limits.
type GamingConfig interface {
	AlertIntervals() []int
	MaxContinuousMinutes() int
	DailyLimitWarning() float64
	MaxSpinsPer30Min() int
	DailyLimit() int
	Cooldown() time.Duration
	ResetLocation() *time.Location
}

type AuditConfig interface {
	FlushInterval() time.Duration
	BatchSize() int
	BackupCap() int
	MaxQueue() int
	MaxRetries() int
}
