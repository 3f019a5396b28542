// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	orax "github.com/orastack/orax"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level orax.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case orax.LogLevelTrace:
		logger.WithField("ORAX_LOG_LEVEL", level).Debug(msg)
	case orax.LogLevelDebug:
		logger.Debug(msg)
	case orax.LogLevelInfo:
		logger.Info(msg)
	case orax.LogLevelWarn:
		logger.Warn(msg)
	case orax.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_ORAX_LOG_LEVEL", level).Error(msg)
	}
}
