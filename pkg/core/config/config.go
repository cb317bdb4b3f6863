package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Audio   AudioConfig   `toml:"audio" yaml:"audio"`
	Capture CaptureConfig `toml:"capture" yaml:"capture"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	LogFormat       string `toml:"log_format" yaml:"log_format"`
	DataDir         string `toml:"data_dir" yaml:"data_dir"`
	PreferencesFile string `toml:"preferences_file" yaml:"preferences_file"`
}

// ServerConfig holds the consultation backend endpoints
type ServerConfig struct {
	BaseURL          string   `toml:"base_url" yaml:"base_url"`
	WebSocketURL     string   `toml:"websocket_url" yaml:"websocket_url"`
	RequestTimeout   Duration `toml:"request_timeout" yaml:"request_timeout"`
	HandshakeTimeout Duration `toml:"handshake_timeout" yaml:"handshake_timeout"`
	UploadTimeout    Duration `toml:"upload_timeout" yaml:"upload_timeout"`
}

// AudioConfig holds audio device settings
type AudioConfig struct {
	InputDevice        string `toml:"input_device" yaml:"input_device"`
	SampleRate         int    `toml:"sample_rate" yaml:"sample_rate"`
	FramesPerBuffer    int    `toml:"frames_per_buffer" yaml:"frames_per_buffer"`
	PlaybackSampleRate int    `toml:"playback_sample_rate" yaml:"playback_sample_rate"`
}

// CaptureConfig holds the silence-detection tuning values.
// These are deliberately configuration, not constants, so the
// auto-stop behavior can be tuned without touching the pipeline.
type CaptureConfig struct {
	MinRecordingDuration Duration `toml:"min_recording_duration" yaml:"min_recording_duration"`
	SilenceDelay         Duration `toml:"silence_delay" yaml:"silence_delay"`
	MaxRecordingDuration Duration `toml:"max_recording_duration" yaml:"max_recording_duration"`
	EnergyThreshold      float64  `toml:"energy_threshold" yaml:"energy_threshold"`
	VADEnabled           bool     `toml:"vad_enabled" yaml:"vad_enabled"`
	VADMode              int      `toml:"vad_mode" yaml:"vad_mode"`
}

// Duration wraps time.Duration for TOML/YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration string from YAML
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	var err error
	d.Duration, err = time.ParseDuration(s)
	return err
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads configuration from TELECONSULT_CONFIG or default locations
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("TELECONSULT_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./teleconsult.toml",
			"./configs/teleconsult.toml",
			filepath.Join(os.Getenv("HOME"), ".config/teleconsult/config.toml"),
			filepath.Join(os.Getenv("HOME"), ".config/teleconsult/config.yaml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}

	return Load(path)
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}
	if c.General.DataDir == "" {
		home, _ := os.UserHomeDir()
		c.General.DataDir = filepath.Join(home, ".local", "share", "teleconsult")
	}
	if c.General.PreferencesFile == "" {
		home, _ := os.UserHomeDir()
		c.General.PreferencesFile = filepath.Join(home, ".config", "teleconsult", "preferences.json")
	}

	// Server
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8000/api"
	}
	if c.Server.WebSocketURL == "" {
		c.Server.WebSocketURL = deriveWebSocketURL(c.Server.BaseURL)
	}
	if c.Server.RequestTimeout.Duration == 0 {
		c.Server.RequestTimeout.Duration = 30 * time.Second
	}
	if c.Server.HandshakeTimeout.Duration == 0 {
		c.Server.HandshakeTimeout.Duration = 10 * time.Second
	}
	if c.Server.UploadTimeout.Duration == 0 {
		c.Server.UploadTimeout.Duration = 60 * time.Second
	}

	// Audio
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = 512
	}
	if c.Audio.PlaybackSampleRate == 0 {
		c.Audio.PlaybackSampleRate = 22050
	}
	if c.Audio.InputDevice == "" {
		c.Audio.InputDevice = "default"
	}

	// Capture
	if c.Capture.MinRecordingDuration.Duration == 0 {
		c.Capture.MinRecordingDuration.Duration = 2000 * time.Millisecond
	}
	if c.Capture.SilenceDelay.Duration == 0 {
		c.Capture.SilenceDelay.Duration = 3000 * time.Millisecond
	}
	if c.Capture.MaxRecordingDuration.Duration == 0 {
		c.Capture.MaxRecordingDuration.Duration = 5 * time.Minute
	}
	if c.Capture.EnergyThreshold == 0 {
		c.Capture.EnergyThreshold = 0.01
	}
	if c.Capture.VADMode == 0 {
		c.Capture.VADMode = 2
	}
}

// expandEnvVars expands environment variables in path-like values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.PreferencesFile = os.ExpandEnv(c.General.PreferencesFile)
	c.Server.BaseURL = os.ExpandEnv(c.Server.BaseURL)
	c.Server.WebSocketURL = os.ExpandEnv(c.Server.WebSocketURL)
}

// deriveWebSocketURL converts an HTTP base URL to its WebSocket counterpart
func deriveWebSocketURL(base string) string {
	ws := strings.Replace(base, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimSuffix(ws, "/") + "/ws"
}
