package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Log output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel returns the zerolog level named by level
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("parseLevel: unknown log level "+
			"%q", level)
	}
}

// NewLogger returns a logger writing to out at the configured level
// and format. Every line carries the run id.
func (l LoggingConfig) NewLogger(out io.Writer, runID string) (zerolog.Logger,
	error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	if l.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run", runID).
		Logger(), nil
}
