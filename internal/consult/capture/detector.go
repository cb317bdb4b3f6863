// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     capture
// Description: Speech detectors for the voice capture pipeline
// License:     MIT
// ============================================================================

package capture

import (
	"fmt"
	"math"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// Detector decides whether a buffer of samples contains speech
type Detector interface {
	// IsSpeech reports whether the buffer contains speech
	IsSpeech(samples []float32) (bool, error)

	// Close releases resources
	Close() error
}

// EnergyDetector classifies a buffer as speech when its RMS energy
// exceeds a fixed threshold. This is the default detector; it needs no
// model and behaves the same on every platform.
type EnergyDetector struct {
	threshold float64
}

// NewEnergyDetector creates an energy detector with the given RMS
// threshold. Typical thresholds are around 0.01 for normalized samples.
func NewEnergyDetector(threshold float64) *EnergyDetector {
	return &EnergyDetector{threshold: threshold}
}

// IsSpeech reports whether the RMS energy of the buffer exceeds the
// threshold
func (d *EnergyDetector) IsSpeech(samples []float32) (bool, error) {
	return rmsEnergy(samples) > d.threshold, nil
}

// Close is a no-op
func (d *EnergyDetector) Close() error {
	return nil
}

// Threshold returns the configured RMS threshold
func (d *EnergyDetector) Threshold() float64 {
	return d.threshold
}

// rmsEnergy computes the root mean square of the buffer
func rmsEnergy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// WebRTCDetector uses the WebRTC voice activity detector. More robust
// against steady background noise than the energy gate, at the price of
// a cgo dependency.
type WebRTCDetector struct {
	vad        *webrtcvad.VAD
	sampleRate int
	mode       int
}

// NewWebRTCDetector creates a WebRTC detector. The sample rate must be
// one of 8000, 16000, 32000 or 48000; the mode ranges from 0 (least
// aggressive) to 3.
func NewWebRTCDetector(sampleRate, mode int) (*WebRTCDetector, error) {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("unsupported sample rate %d for WebRTC VAD", sampleRate)
	}
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}

	vad, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}
	if err := vad.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	return &WebRTCDetector{vad: vad, sampleRate: sampleRate, mode: mode}, nil
}

// IsSpeech reports whether any 10ms frame of the buffer is voiced
func (d *WebRTCDetector) IsSpeech(samples []float32) (bool, error) {
	frameSize := d.sampleRate / 100

	int16Samples := floatToInt16(samples)
	if len(int16Samples) < frameSize {
		padded := make([]int16, frameSize)
		copy(padded, int16Samples)
		int16Samples = padded
	}

	for i := 0; i+frameSize <= len(int16Samples); i += frameSize {
		frame := int16Samples[i : i+frameSize]
		active, err := d.vad.Process(d.sampleRate, int16ToBytes(frame))
		if err != nil {
			return false, fmt.Errorf("VAD processing failed: %w", err)
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op; the underlying VAD needs no explicit cleanup
func (d *WebRTCDetector) Close() error {
	return nil
}

func floatToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int16(s * 32767)
	}
	return out
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
