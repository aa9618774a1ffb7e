package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig enables a rotated JSON log file next to stdout.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func NewJSONLogger(service, level string) *slog.Logger {
	return New(service, level, os.Stdout, FileConfig{})
}

// New writes JSON records to out and, when file.Path is set, to a
// lumberjack-rotated file as well.
func New(service, level string, out io.Writer, file FileConfig) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if path := strings.TrimSpace(file.Path); path != "" {
		out = io.MultiWriter(out, newRotator(file))
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func newRotator(file FileConfig) *lumberjack.Logger {
	maxSize := file.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := file.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}
	maxAge := file.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}
	return &lumberjack.Logger{
		Filename:   strings.TrimSpace(file.Path),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   file.Compress,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
