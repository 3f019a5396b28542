// Package kitlogadapter provides a logger that writes to a
// github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	orax "github.com/orastack/orax"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level orax.LogLevel, msg string, data map[string]interface{}) {
	logger := l.l
	for k, v := range data {
		logger = log.With(logger, k, v)
	}

	switch level {
	case orax.LogLevelTrace:
		logger.Log("ORAX_LOG_LEVEL", level, "msg", msg)
	case orax.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case orax.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case orax.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case orax.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_ORAX_LOG_LEVEL", level, "error", msg)
	}
}
