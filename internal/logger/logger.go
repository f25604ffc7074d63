// Package logger wraps zap behind a process-wide sugared logger.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.Mutex
	sugar *zap.SugaredLogger
)

// Init builds the process logger. Mode "prod"/"production" selects the
// JSON production config, anything else the development console config.
func Init(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	sugar = zapLogger.Sugar()
	return nil
}

// L returns the process logger. Before Init it falls back to a
// development logger so early call sites and tests still log.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		zapLogger, err := zap.NewDevelopment()
		if err != nil {
			zapLogger = zap.NewNop()
		}
		sugar = zapLogger.Sugar()
	}
	return sugar
}

// Sync flushes buffered log entries, called at shutdown
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
