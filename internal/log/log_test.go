package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWriterProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", "production")
	Debug("hidden")
	With("component", "test").Info("shown", "n", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON, got %q: %v", lines[0], err)
	}
	if rec["msg"] != "shown" || rec["component"] != "test" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestInitWriterDevelopmentText(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", "development")
	Debug("visible", "k", "v")
	if !strings.Contains(buf.String(), "msg=visible") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected text record, got %q", buf.String())
	}
}
