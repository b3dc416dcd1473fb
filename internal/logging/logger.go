// Package logging wraps log/slog with a component attribute.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Common attribute keys.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldProjectID = "project_id"
	FieldCount     = "count"
	FieldError     = "error"
	FieldPath      = "path"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentSession = "session"
	ComponentConfig  = "config"
)

// Logger is a slog.Logger bound to a component.
type Logger struct {
	*slog.Logger
	base *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Writer    io.Writer
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.Component == "" {
		cfg.Component = ComponentApp
	}
	base := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level}))
	return &Logger{
		Logger: base.With(FieldComponent, cfg.Component),
		base:   base,
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Logger{Logger: base, base: base}
}

// WithComponent returns a child logger for another component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.base.With(FieldComponent, component),
		base:   l.base,
	}
}
