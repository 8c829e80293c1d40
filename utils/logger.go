package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campus-gms/config"
)

// NewLogger builds the server logger. Release mode gets JSON output,
// everything else the console encoder.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		// Fallback to a basic logger if config fails
		logger = zap.NewExample()
	}
	return logger
}
