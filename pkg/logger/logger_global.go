package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var (
	globalLock sync.RWMutex

	// globalLogger defaults to no-op zap so the package-level functions
	// always safe to call before SetGlobalLogger.
	globalLogger Logger = NewZap(zap.NewNop())
)

// SetGlobalLogger replace the logger used by the package-level functions.
func SetGlobalLogger(log Logger) {
	if log == nil {
		return
	}

	globalLock.Lock()
	defer globalLock.Unlock()
	globalLogger = log
}

func getGlobalLogger() Logger {
	globalLock.RLock()
	defer globalLock.RUnlock()
	return globalLogger
}

func Debug(ctx context.Context, msg string, fields ...KeyValue) {
	getGlobalLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...KeyValue) {
	getGlobalLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...KeyValue) {
	getGlobalLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...KeyValue) {
	getGlobalLogger().Error(ctx, msg, fields...)
}

func Access(ctx context.Context, data AccessLogData) {
	getGlobalLogger().Access(ctx, data)
}
