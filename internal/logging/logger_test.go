package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelWarn,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "text", "warn")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Info("hidden")
	l.Warn("unmatched hunk ids", "ids", "x:1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "unmatched hunk ids") || !strings.Contains(out, "ids=x:1") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "json", "debug")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Debug("parsed", "files", 2)
	if !strings.Contains(buf.String(), `"files":2`) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(nil, "xml", ""); err == nil {
		t.Errorf("expected error for unknown format")
	}
}
