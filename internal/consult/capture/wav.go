// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     capture
// Description: WAV packaging of captured samples
// License:     MIT
// ============================================================================

package capture

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV packages float32 samples as a mono 16-bit PCM WAV file
func EncodeWAV(samples []float32, sampleRate int) []byte {
	int16Samples := floatToInt16(samples)

	var buf bytes.Buffer

	numChannels := uint16(1)
	bitsPerSample := uint16(16)
	rate := uint32(sampleRate)
	byteRate := rate * uint32(numChannels) * uint32(bitsPerSample) / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := uint32(len(int16Samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&buf, binary.LittleEndian, numChannels)
	binary.Write(&buf, binary.LittleEndian, rate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bitsPerSample)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, sample := range int16Samples {
		binary.Write(&buf, binary.LittleEndian, sample)
	}

	return buf.Bytes()
}
