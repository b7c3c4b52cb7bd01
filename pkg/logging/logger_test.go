package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines at WARN level, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "warn msg") {
		t.Errorf("First line should be the warning, got %q", lines[0])
	}
}

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("merged tables", Stage("merge"), Int("rows", 42), Float64("elapsed_sec", 1.5))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}

	fields, ok := entry["fields"].(map[string]any)
	if !ok {
		t.Fatalf("Expected fields object, got %v", entry)
	}
	if fields["stage"] != "merge" {
		t.Errorf("Expected stage=merge, got %v", fields["stage"])
	}
	if fields["rows"] != float64(42) {
		t.Errorf("Expected rows=42, got %v", fields["rows"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(String("run_id", "abc-123"))
	child.Info("stage complete")

	if !strings.Contains(buf.String(), "abc-123") {
		t.Errorf("Child logger should carry pre-set fields: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
