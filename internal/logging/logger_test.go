package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Writer: &buf})
	l.WithComponent(ComponentStore).Debug("saved", FieldProjectID, "PRJ-1")

	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Fatalf("log line %q missing component=store", out)
	}
	if strings.Contains(out, "component=app") {
		t.Fatalf("log line %q carries the parent component", out)
	}
	if !strings.Contains(out, "project_id=PRJ-1") {
		t.Fatalf("log line %q missing project_id", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Writer: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn not logged: %q", buf.String())
	}
}
