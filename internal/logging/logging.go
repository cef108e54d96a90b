// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init builds the application logger, installs it as the global logger and
// returns it. format "json" writes JSON lines; anything else writes
// human-readable console output. Unknown levels fall back to info.
func Init(app, level, format string) zerolog.Logger {
	return New(os.Stderr, app, level, format)
}

// New is Init with an explicit output
func New(out io.Writer, app, level, format string) zerolog.Logger {
	var output io.Writer = out
	if !strings.EqualFold(format, "json") {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		Level(ParseLevel(level)).
		With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
