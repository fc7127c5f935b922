package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger   *zap.Logger = zap.NewNop()
	loggerMu sync.RWMutex
)

// Logger returns the utils package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger configures the utils package's logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}
