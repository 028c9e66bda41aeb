package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production uses the JSON encoder,
// everything else the colored console encoder.
func New(isProd bool) *zap.Logger {
	if isProd {
		return zap.Must(zap.NewProduction())
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zap.Must(cfg.Build())
}
