package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"groupbuy-service/pkg/config"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// InitLogger builds the process-wide logger from configuration. Safe to call
// once at startup; later GetLogger calls reuse the same instance.
func InitLogger(cfg *config.Config) {
	once.Do(func() {
		zapCfg := zap.NewProductionConfig()
		zapCfg.OutputPaths = []string{"stdout"}
		if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
		logger, err := zapCfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
	})
}

// GetLogger returns the process-wide logger, building a default one if
// InitLogger was never called.
func GetLogger() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
	})
	return instance
}
