package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "test", Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("output contains filtered entries: %q", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "kept too") {
		t.Errorf("output missing expected entries: %q", out)
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "channel", Level: LevelDebug, Format: FormatText, Output: &buf})

	logger.Info("connected", "consultation_id", "cons-1", "attempt", 2)

	out := buf.String()
	for _, want := range []string{"[INFO]", "channel:", "connected", "consultation_id=cons-1", "attempt=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "capture", Level: LevelDebug, Format: FormatJSON, Output: &buf})

	logger.Warn("silence timeout", "elapsed_ms", 3000)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["logger"] != "capture" {
		t.Errorf("logger = %v, want capture", entry["logger"])
	}
	if entry["message"] != "silence timeout" {
		t.Errorf("message = %v, want silence timeout", entry["message"])
	}
	if entry["elapsed_ms"] != float64(3000) {
		t.Errorf("elapsed_ms = %v, want 3000", entry["elapsed_ms"])
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "consult", Level: LevelDebug, Format: FormatText, Output: &buf})

	logger.Named("playback").Info("started")

	if !strings.Contains(buf.String(), "consult.playback:") {
		t.Errorf("output %q missing dotted logger name", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "t", Level: LevelDebug, Format: FormatJSON, Output: &buf})

	child := logger.WithFields(Fields{"session": "cons-9"})
	child.Info("event", "seq", 1)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["session"] != "cons-9" {
		t.Errorf("session = %v, want cons-9", entry["session"])
	}
	if entry["seq"] != float64(1) {
		t.Errorf("seq = %v, want 1", entry["seq"])
	}
}

func TestLogger_OddKeyValuesIgnored(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Name: "t", Level: LevelDebug, Format: FormatText, Output: &buf})

	// Trailing key without value must not panic
	logger.Info("msg", "key")
	if !strings.Contains(buf.String(), "msg") {
		t.Errorf("entry not written: %q", buf.String())
	}
}
