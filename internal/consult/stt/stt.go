// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     stt
// Description: Speech-to-text upload interface
// License:     MIT
// ============================================================================

package stt

import "context"

// Request carries the upload parameters for one recording
type Request struct {
	ConsultationID string
	SourceLanguage string
	AutoDetect     bool
	VoiceGender    string
}

// Result is a completed transcription
type Result struct {
	// Text is the transcription in the spoken language
	Text string

	// EnglishText is the English rendering, set only when the spoken
	// language is not English
	EnglishText string

	// Language is the detected language code
	Language string

	// LanguageName is the human-readable language name
	LanguageName string

	// Confidence is the detection confidence, 0..1
	Confidence float64
}

// Transcriber converts a WAV recording into text
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, req Request) (Result, error)
}
