package capture

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1.0}
	data := EncodeWAV(samples, 16000)

	wantLen := 44 + len(samples)*2
	if len(data) != wantLen {
		t.Fatalf("len = %d, want %d", len(data), wantLen)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunks")
	}

	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", format)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}
	if size := binary.LittleEndian.Uint32(data[40:44]); size != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", size, len(samples)*2)
	}

	// Sample values survive the conversion
	if s := int16(binary.LittleEndian.Uint16(data[44:46])); s != 0 {
		t.Errorf("sample 0 = %d, want 0", s)
	}
	if s := int16(binary.LittleEndian.Uint16(data[50:52])); s != 32767 {
		t.Errorf("sample 3 = %d, want 32767", s)
	}
}

func TestEncodeWAV_Empty(t *testing.T) {
	data := EncodeWAV(nil, 16000)
	if len(data) != 44 {
		t.Errorf("len = %d, want header only (44)", len(data))
	}
}
