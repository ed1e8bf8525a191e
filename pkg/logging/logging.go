// Package logging provides structured logging for civimport using zerolog:
// human-readable console output when attached to a terminal, JSON otherwise,
// with level and format overridable through the environment.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var defaultLogger = newLogger(Config{})

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty means
	// info, or the LOG_LEVEL environment variable when set.
	Level string

	// Format is "console", "json", or empty for auto-detection based on
	// whether stderr is a terminal.
	Format string

	// Output overrides the destination; defaults to stderr.
	Output io.Writer
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// Configure rebuilds the process-wide logger. Intended for CLI startup;
// library code should take loggers as dependencies instead.
func Configure(cfg Config) {
	defaultLogger = newLogger(cfg)
}

func newLogger(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)

	var writer io.Writer = os.Stderr
	if cfg.Output != nil {
		writer = cfg.Output
	}

	format := cfg.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	useConsole := format == "console"
	if format == "" || format == "auto" {
		if f, ok := writer.(*os.File); ok {
			useConsole = isatty.IsTerminal(f.Fd())
		}
	}
	if useConsole {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func parseLevel(name string) zerolog.Level {
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
