// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     playback
// Description: Output engines for audio playback
// License:     MIT
// ============================================================================

package playback

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Engine opens output streams. Abstracted so the player can be tested
// without an audio device.
type Engine interface {
	Open(sampleRate int) (Stream, error)
}

// Stream accepts sample chunks until closed
type Stream interface {
	// Write blocks until the chunk has been handed to the device
	Write(chunk []float32) error

	// Close releases the stream
	Close() error
}

const engineBufferFrames = 1024

// PortAudioEngine plays through the default output device
type PortAudioEngine struct{}

// NewPortAudioEngine creates a PortAudio-backed engine
func NewPortAudioEngine() *PortAudioEngine {
	return &PortAudioEngine{}
}

// Open initializes PortAudio and opens a mono output stream
func (e *PortAudioEngine) Open(sampleRate int) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	buffer := make([]float32, engineBufferFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), engineBufferFrames, &buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}

	return &paStream{stream: stream, buffer: buffer}, nil
}

type paStream struct {
	stream *portaudio.Stream
	buffer []float32
}

// Write pads short chunks with silence to fill the device buffer
func (s *paStream) Write(chunk []float32) error {
	for i := range s.buffer {
		if i < len(chunk) {
			s.buffer[i] = chunk[i]
		} else {
			s.buffer[i] = 0
		}
	}
	if err := s.stream.Write(); err != nil {
		return fmt.Errorf("failed to write to output stream: %w", err)
	}
	return nil
}

func (s *paStream) Close() error {
	s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	if err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	return nil
}
