// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     playback
// Description: WAV decoding for backend audio payloads
// License:     MIT
// ============================================================================

package playback

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Clip is decoded audio ready for playback
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// ParseWAV decodes a mono 16-bit PCM WAV file into a clip
func ParseWAV(data []byte) (Clip, error) {
	if len(data) < 44 {
		return Clip{}, fmt.Errorf("too small to be a valid WAV")
	}
	if string(data[0:4]) != "RIFF" {
		return Clip{}, fmt.Errorf("not a valid RIFF file")
	}
	if string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("not a valid WAVE file")
	}

	pos := 12
	var sampleRate uint32
	var dataStart, dataSize int

	for pos <= len(data)-8 {
		chunkID := string(data[pos : pos+4])
		chunkSize := binary.LittleEndian.Uint32(data[pos+4 : pos+8])

		switch chunkID {
		case "fmt ":
			if chunkSize >= 16 {
				sampleRate = binary.LittleEndian.Uint32(data[pos+12 : pos+16])
			}
		case "data":
			dataStart = pos + 8
			dataSize = int(chunkSize)
		}

		pos += 8 + int(chunkSize)
		if pos%2 != 0 {
			pos++ // word alignment
		}
	}

	if sampleRate == 0 || dataStart == 0 {
		return Clip{}, fmt.Errorf("missing required WAV chunks")
	}
	if dataStart+dataSize > len(data) {
		dataSize = len(data) - dataStart
	}

	pcm := data[dataStart : dataStart+dataSize]
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}

	return Clip{Samples: samples, SampleRate: int(sampleRate)}, nil
}
