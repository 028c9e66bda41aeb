package env

import (
	"errors"
	"os"

	"zodiac_backend/internal/config"
)

// dsnName DSN базы удалённого приёмника аудита
const dsnName = "PG_DSN"

type pgConfig struct {
	dsn string
}

// NewPGConfig reads the audit sink DSN from the environment.
// Unlike the audit and gaming settings it has no default.
func NewPGConfig() (config.PGConfig, error) {
	dsn := os.Getenv(dsnName)
	if len(dsn) == 0 {
		return nil, errors.New("audit sink dsn not found: set " + dsnName)
	}

	return &pgConfig{
		dsn: dsn,
	}, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.dsn
}
