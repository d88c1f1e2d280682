// Package logger builds the gookit/slog logger shared by every component.
package logger

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface components depend on.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields are extra top-level keys for structured entries.
type Fields map[string]any

// Log is the fallback used when a component is built without a logger.
var Log Logger = NewLogger("info")

// LevelFromEnv returns the level in envKey, falling back to fallback and then
// to info.
func LevelFromEnv(envKey, fallback string) string {
	level := strings.ToLower(os.Getenv(envKey))
	if level == "" {
		level = strings.ToLower(fallback)
	}
	if level == "" {
		level = "info"
	}
	return level
}

// Init replaces Log with a logger at level.
func Init(level string) Logger {
	Log = NewLogger(level)
	return Log
}

// NewLogger returns a JSON console logger emitting level and everything more severe.
func NewLogger(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// InfoWithFields logs msg with fields as top-level keys when l is a gookit logger.
func InfoWithFields(l Logger, msg string, fields Fields) {
	if lg, ok := l.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	l.Info(msg)
}

func WarnWithFields(l Logger, msg string, fields Fields) {
	if lg, ok := l.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Warn(msg)
		return
	}
	l.Warn(msg)
}
