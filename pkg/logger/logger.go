package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Init installs a JSON stdout logger until InitStructured picks the
// environment specific output.
func Init() {
	zlog = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "chat-backend").
		Logger()
}

// Info logs a printf-style message at info level
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warn logs a printf-style message at warn level
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Error logs a printf-style message at error level
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}
