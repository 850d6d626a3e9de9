// Package logger builds the application's zerolog loggers. The terminal
// belongs to the TUI, so the interactive client logs to a rotating file;
// one-shot CLI commands may log to stderr instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nhle/carepartner/internal/model"
)

// ParseLevel maps a config level name to a zerolog level, defaulting to
// info for anything unrecognized.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New returns a JSON logger writing to the rotating file cfg.Path. The
// returned closer releases the file. verbose forces debug level.
func New(cfg model.LogConfig, verbose bool) (zerolog.Logger, io.Closer, error) {
	if cfg.Path == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     30,
		Compress:   true,
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level := ParseLevel(cfg.Level)
	if verbose {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return log, writer, nil
}

// Console returns a human-readable logger for CLI commands.
func Console(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
