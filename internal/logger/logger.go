package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	globalLogger = zerolog.Nop()
	once         sync.Once
)

// InitLogging configures the global zerolog logger. Only the first call has an effect.
func InitLogging(level, logFilePath string) {
	once.Do(func() {
		writers := []io.Writer{os.Stdout}

		if logFilePath != "" {
			file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				// the logger is not ready yet
				os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		lvl, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			lvl = zerolog.InfoLevel
		}

		multi := zerolog.MultiLevelWriter(writers...)
		globalLogger = zerolog.New(multi).With().Timestamp().Logger().Level(lvl)
	})
}

// WithLogger returns a new context carrying the global logger enriched with fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the zerolog logger from the context, falling back to the global logger.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

// DebugLog logs a debug level message.
func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

// InfoLog logs an info level message.
func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

// WarnLog logs a warning level message.
func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs an error level message with err attached as the error field.
func ErrorLog(ctx context.Context, err error, msg string, args ...interface{}) {
	getLogger(ctx).Error().Err(err).Msgf(msg, args...)
}
