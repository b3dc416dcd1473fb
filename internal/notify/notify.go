// Package notify delivers user-visible messages from the estimator.
package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/logging"
)

// Severity grades a notification.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives messages meant for the user. Notify never fails.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts a function to Notifier.
type Func func(message string, severity Severity)

// Notify calls f.
func (f Func) Notify(message string, severity Severity) { f(message, severity) }

// Terminal prints one styled line per notification.
type Terminal struct {
	w     io.Writer
	quiet bool
}

// NewTerminal returns a sink writing to w. With quiet set only warnings and
// errors are printed.
func NewTerminal(w io.Writer, quiet bool) *Terminal {
	return &Terminal{w: w, quiet: quiet}
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(cli.ColorBlue)
	successStyle = lipgloss.NewStyle().Foreground(cli.ColorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(cli.ColorOrange)
	errorStyle   = lipgloss.NewStyle().Foreground(cli.ColorRed).Bold(true)
)

func marker(s Severity) string {
	switch s {
	case Success:
		return successStyle.Render("✓")
	case Warning:
		return warnStyle.Render("!")
	case Error:
		return errorStyle.Render("✗")
	default:
		return infoStyle.Render("·")
	}
}

// Notify writes message to the terminal.
func (t *Terminal) Notify(message string, severity Severity) {
	if t.quiet && severity < Warning {
		return
	}
	fmt.Fprintf(t.w, "  %s %s\n", marker(severity), message)
}

// Log forwards notifications to a structured logger.
type Log struct {
	log *logging.Logger
}

// NewLog returns a sink writing to log.
func NewLog(log *logging.Logger) *Log {
	return &Log{log: log}
}

// Notify logs message at a level matching severity.
func (l *Log) Notify(message string, severity Severity) {
	switch severity {
	case Error:
		l.log.Error(message)
	case Warning:
		l.log.Warn(message)
	default:
		l.log.Info(message)
	}
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

// Notify delivers message to each sink in order.
func (m Multi) Notify(message string, severity Severity) {
	for _, n := range m {
		n.Notify(message, severity)
	}
}
