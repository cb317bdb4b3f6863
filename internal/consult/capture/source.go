// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     capture
// Description: Microphone sample sources
// License:     MIT
// ============================================================================

package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Source delivers buffers of microphone samples. Implementations own
// their device handle; Stop releases the live stream, Close releases
// everything.
type Source interface {
	// Start opens the device and begins delivering buffers on Output
	Start(ctx context.Context) error

	// Stop ends delivery and releases the stream. Output is closed.
	Stop() error

	// Output returns the sample buffer stream
	Output() <-chan []float32

	// SampleRate returns the capture sample rate in Hz
	SampleRate() int

	// Close releases all resources held by the source
	Close() error
}

// MicConfig configures a microphone source
type MicConfig struct {
	SampleRate      int
	FramesPerBuffer int
	DeviceName      string // empty selects the default input device
}

// MicSource captures from a microphone via PortAudio
type MicSource struct {
	mu          sync.RWMutex
	cfg         MicConfig
	stream      *portaudio.Stream
	output      chan []float32
	running     bool
	initialized bool
}

// NewMicSource creates a microphone source. PortAudio is initialized
// here and released again by Close.
func NewMicSource(cfg MicConfig) (*MicSource, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 512
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &MicSource{
		cfg:         cfg,
		initialized: true,
	}, nil
}

// Start opens the input stream and begins the capture loop
func (m *MicSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("microphone source already running")
	}

	buffer := make([]float32, m.cfg.FramesPerBuffer)

	stream, err := m.openStream(buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	m.stream = stream
	m.output = make(chan []float32, 100)
	m.running = true

	go m.captureLoop(ctx, buffer, m.output)
	return nil
}

func (m *MicSource) openStream(buffer []float32) (*portaudio.Stream, error) {
	if m.cfg.DeviceName != "" && m.cfg.DeviceName != "default" {
		if device, err := findInputDevice(m.cfg.DeviceName); err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: 1,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      float64(m.cfg.SampleRate),
				FramesPerBuffer: m.cfg.FramesPerBuffer,
			}
			return portaudio.OpenStream(params, buffer)
		}
		// Named device not found, fall back to the default input
	}
	return portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), m.cfg.FramesPerBuffer, buffer)
}

func (m *MicSource) captureLoop(ctx context.Context, buffer []float32, output chan []float32) {
	defer close(output)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.mu.RLock()
		running := m.running
		stream := m.stream
		m.mu.RUnlock()
		if !running || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			m.mu.RLock()
			running = m.running
			m.mu.RUnlock()
			if !running {
				return
			}
			continue
		}

		samples := make([]float32, len(buffer))
		copy(samples, buffer)

		select {
		case output <- samples:
		default:
			// Consumer is behind, drop the buffer
		}
	}
}

// Stop ends capture and releases the stream
func (m *MicSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false

	if m.stream != nil {
		m.stream.Stop()
		if err := m.stream.Close(); err != nil {
			m.stream = nil
			return fmt.Errorf("failed to close audio stream: %w", err)
		}
		m.stream = nil
	}
	return nil
}

// Output returns the sample stream of the current run
func (m *MicSource) Output() <-chan []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.output
}

// SampleRate returns the configured capture rate
func (m *MicSource) SampleRate() int {
	return m.cfg.SampleRate
}

// Close stops capture and terminates PortAudio
func (m *MicSource) Close() error {
	if err := m.Stop(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		if err := portaudio.Terminate(); err != nil {
			return fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		m.initialized = false
	}
	return nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("input device not found: %s", name)
}

// DeviceInfo describes an available input device
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices enumerates the available input devices
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	defaultInput, _ := portaudio.DefaultInputDevice()
	var defaultName string
	if defaultInput != nil {
		defaultName = defaultInput.Name
	}

	var out []DeviceInfo
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			out = append(out, DeviceInfo{
				Name:              dev.Name,
				MaxInputChannels:  dev.MaxInputChannels,
				DefaultSampleRate: dev.DefaultSampleRate,
				IsDefault:         dev.Name == defaultName,
			})
		}
	}
	return out, nil
}
