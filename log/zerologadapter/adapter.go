// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	orax "github.com/orastack/orax"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps a zerolog.Logger, tagging every entry with the module
// name.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("module", "orax").Logger(),
	}
}

func (l *Logger) Log(ctx context.Context, level orax.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case orax.LogLevelNone:
		zlevel = zerolog.NoLevel
	case orax.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case orax.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case orax.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	oraxlog := l.logger.With().Fields(data).Logger()
	oraxlog.WithLevel(zlevel).Msg(msg)
}
