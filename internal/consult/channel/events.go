// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     channel
// Description: Wire frames exchanged over the consultation channel
// License:     MIT
// ============================================================================

package channel

import (
	"encoding/base64"
	"time"

	"github.com/arogya/teleconsult/internal/consult/store"
)

// Inbound event types produced by the consultation backend
const (
	EventResponse = "response"
	EventWelcome  = "welcome"
	EventWarning  = "warning"
	EventError    = "error"
)

// InitPayload is sent once right after the connection is established
type InitPayload struct {
	Language         string         `json:"language"`
	AutoDetect       bool           `json:"autoDetect"`
	VoicePreferences VoicePrefsInit `json:"voicePreferences"`
}

// VoicePrefsInit is the voice block of the init payload
type VoicePrefsInit struct {
	Enabled bool   `json:"enabled"`
	Gender  string `json:"gender"`
}

type initFrame struct {
	Type        string      `json:"type"`
	Preferences InitPayload `json:"preferences"`
}

// OutboundMessage is a user message sent over the channel
type OutboundMessage struct {
	Type        string              `json:"type"`
	Content     string              `json:"content"`
	Language    OutboundLanguage    `json:"language"`
	Preferences OutboundPreferences `json:"preferences"`
}

// OutboundLanguage carries the source-language selection for one message
type OutboundLanguage struct {
	Source     string `json:"source"`
	AutoDetect bool   `json:"autoDetect"`
}

// OutboundPreferences carries per-message display preferences
type OutboundPreferences struct {
	Voice            bool `json:"voice"`
	ShowOriginalText bool `json:"showOriginalText"`
}

// NewOutboundMessage builds a message frame with the fixed type tag
func NewOutboundMessage(content string, lang OutboundLanguage, prefs OutboundPreferences) OutboundMessage {
	return OutboundMessage{
		Type:        "message",
		Content:     content,
		Language:    lang,
		Preferences: prefs,
	}
}

// InboundEvent is one frame received from the backend. Unknown fields
// are ignored; unknown types are passed through for the consumer to
// decide on.
type InboundEvent struct {
	Type              string            `json:"type"`
	Content           string            `json:"content"`
	OriginalMessage   string            `json:"original_message"`
	TranslatedMessage string            `json:"translated_message"`
	Language          *InboundLanguage  `json:"language"`
	Timestamp         string            `json:"timestamp"`
	Audio             string            `json:"audio"`
	Symptoms          []InboundSymptom  `json:"symptoms"`
	ConfidenceScores  *ConfidenceScores `json:"confidence_scores"`
	Urgency           string            `json:"urgency"`
	RequiresEmergency bool              `json:"requires_emergency"`
	Recommendations   []string          `json:"recommendations"`
}

// InboundLanguage is the language block of an inbound event
type InboundLanguage struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// InboundSymptom is one detected symptom
type InboundSymptom struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
}

// ConfidenceScores holds the analysis confidence block
type ConfidenceScores struct {
	Overall float64 `json:"overall"`
}

// IsError reports whether the event is an in-band error notification
func (e InboundEvent) IsError() bool {
	return e.Type == EventError
}

// ToMessage maps an inbound event 1:1 into a conversation store entry.
// Undecodable audio is dropped rather than failing the whole event.
func (e InboundEvent) ToMessage() store.Message {
	msg := store.Message{
		Kind:              store.KindBot,
		Content:           e.Content,
		OriginalContent:   e.OriginalMessage,
		TranslatedContent: e.TranslatedMessage,
		Timestamp:         e.parseTimestamp(),
	}
	if msg.OriginalContent == "" {
		msg.OriginalContent = e.Content
	}

	if e.Language != nil {
		msg.Language = store.Language{
			Source:       e.Language.Source,
			Target:       e.Language.Target,
			AutoDetected: e.Language.Detected,
			Confidence:   e.Language.Confidence,
		}
	}

	if e.Audio != "" {
		if audio, err := base64.StdEncoding.DecodeString(e.Audio); err == nil {
			msg.Audio = audio
		}
	}

	if len(e.Symptoms) > 0 || e.ConfidenceScores != nil || e.Urgency != "" ||
		e.RequiresEmergency || len(e.Recommendations) > 0 {
		analysis := &store.Analysis{
			Urgency:           e.Urgency,
			RequiresEmergency: e.RequiresEmergency,
			Recommendations:   e.Recommendations,
		}
		for _, s := range e.Symptoms {
			analysis.Symptoms = append(analysis.Symptoms, store.Symptom{
				Name:     s.Name,
				Severity: s.Severity,
			})
		}
		if e.ConfidenceScores != nil {
			analysis.OverallConfidence = e.ConfidenceScores.Overall
		}
		msg.Analysis = analysis
	}

	return msg
}

func (e InboundEvent) parseTimestamp() time.Time {
	if e.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			return ts
		}
		if ts, err := time.Parse("2006-01-02T15:04:05.999999", e.Timestamp); err == nil {
			return ts
		}
	}
	return time.Now()
}
