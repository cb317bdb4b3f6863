package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"milliseconds", "2000ms", 2000 * time.Millisecond, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1m30s", 90 * time.Second, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Audio.SampleRate = %v, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FramesPerBuffer != 512 {
		t.Errorf("Audio.FramesPerBuffer = %v, want 512", cfg.Audio.FramesPerBuffer)
	}
	if cfg.Capture.MinRecordingDuration.Duration != 2000*time.Millisecond {
		t.Errorf("Capture.MinRecordingDuration = %v, want 2s", cfg.Capture.MinRecordingDuration.Duration)
	}
	if cfg.Capture.SilenceDelay.Duration != 3000*time.Millisecond {
		t.Errorf("Capture.SilenceDelay = %v, want 3s", cfg.Capture.SilenceDelay.Duration)
	}
	if cfg.Capture.EnergyThreshold != 0.01 {
		t.Errorf("Capture.EnergyThreshold = %v, want 0.01", cfg.Capture.EnergyThreshold)
	}
	if cfg.Server.WebSocketURL != "ws://localhost:8000/api/ws" {
		t.Errorf("Server.WebSocketURL = %v, want ws://localhost:8000/api/ws", cfg.Server.WebSocketURL)
	}
}

func TestConfig_applyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Capture.SilenceDelay.Duration = 1500 * time.Millisecond
	cfg.Server.BaseURL = "https://consult.example.com/api"
	cfg.applyDefaults()

	if cfg.Capture.SilenceDelay.Duration != 1500*time.Millisecond {
		t.Errorf("SilenceDelay overridden by defaults: %v", cfg.Capture.SilenceDelay.Duration)
	}
	if cfg.Server.WebSocketURL != "wss://consult.example.com/api/ws" {
		t.Errorf("WebSocketURL = %v, want wss scheme", cfg.Server.WebSocketURL)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[general]
log_level = "debug"

[server]
base_url = "http://medserver:9000/api"
request_timeout = "45s"

[capture]
silence_delay = "2500ms"
energy_threshold = 0.02
vad_enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Server.BaseURL != "http://medserver:9000/api" {
		t.Errorf("BaseURL = %v", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout.Duration != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.Server.RequestTimeout.Duration)
	}
	if cfg.Capture.SilenceDelay.Duration != 2500*time.Millisecond {
		t.Errorf("SilenceDelay = %v, want 2.5s", cfg.Capture.SilenceDelay.Duration)
	}
	if !cfg.Capture.VADEnabled {
		t.Error("VADEnabled = false, want true")
	}
	// Defaults still applied for unset fields
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %v, want default 16000", cfg.Audio.SampleRate)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
general:
  log_level: warn
server:
  base_url: http://medserver:9000/api
capture:
  min_recording_duration: 1s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.General.LogLevel)
	}
	if cfg.Capture.MinRecordingDuration.Duration != time.Second {
		t.Errorf("MinRecordingDuration = %v, want 1s", cfg.Capture.MinRecordingDuration.Duration)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() with missing file: expected error, got nil")
	}
}
