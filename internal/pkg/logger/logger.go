package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds the process-wide logger. Production gets JSON at info
// level, everything else a colored console logger at debug.
func Init(appEnv string) *zap.Logger {
	var cfg zap.Config

	if strings.EqualFold(appEnv, "prod") || strings.EqualFold(appEnv, "production") {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	global = l
	return l
}

// Get returns the global logger, initializing a development one on
// first use so tests do not need explicit setup.
func Get() *zap.Logger {
	if global == nil {
		return Init("dev")
	}
	return global
}
