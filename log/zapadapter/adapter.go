// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	orax "github.com/orastack/orax"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *Logger) Log(ctx context.Context, level orax.LogLevel, msg string, data map[string]interface{}) {
	fields := make([]zapcore.Field, len(data))
	i := 0
	for k, v := range data {
		fields[i] = zap.Any(k, v)
		i++
	}

	switch level {
	case orax.LogLevelTrace:
		l.logger.Debug(msg, append(fields, zap.Stringer("ORAX_LOG_LEVEL", level))...)
	case orax.LogLevelDebug:
		l.logger.Debug(msg, fields...)
	case orax.LogLevelInfo:
		l.logger.Info(msg, fields...)
	case orax.LogLevelWarn:
		l.logger.Warn(msg, fields...)
	case orax.LogLevelError:
		l.logger.Error(msg, fields...)
	default:
		l.logger.Error(msg, append(fields, zap.Stringer("INVALID_ORAX_LOG_LEVEL", level))...)
	}
}
