// Package logging builds slog loggers from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the log output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logger construction options.
type Config struct {
	// Level is the minimum level to emit.
	Level slog.Level

	// Format selects text or json output.
	Format Format

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// New creates a slog.Logger from cfg.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(handler)
}

// Nop returns a logger that discards everything. Use it where a logger is
// required but logging is disabled.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level string to a slog.Level, defaulting to Info for
// anything unrecognized.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat maps a format string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	if s == "json" || s == "JSON" {
		return FormatJSON
	}
	return FormatText
}
