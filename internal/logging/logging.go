// Package logging configures the process-wide structured logger. Verbosity
// is controlled by the TERRASRV_LOG environment variable using the level
// names off, error, warn, info, debug, trace (trace maps to zap's debug
// level, the closest zap has).
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envVar = "TERRASRV_LOG"

// New builds the process logger from TERRASRV_LOG, defaulting to info.
func New() (*zap.Logger, error) {
	level := levelFromEnv(os.Getenv(envVar))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func levelFromEnv(v string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "off":
		return zapcore.FatalLevel + 1 // above Fatal: effectively silent
	case "error":
		return zapcore.ErrorLevel
	case "warn":
		return zapcore.WarnLevel
	case "debug", "trace":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}
