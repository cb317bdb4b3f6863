// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     store
// Description: Append-only conversation log for one consultation session
// License:     MIT
// ============================================================================

package store

import (
	"sync"
	"time"
)

// Kind distinguishes who produced a message
type Kind string

const (
	KindUser Kind = "user"
	KindBot  Kind = "bot"
)

// Language describes the language metadata attached to a message
type Language struct {
	Source       string
	Target       string
	AutoDetected bool
	Confidence   float64
}

// Symptom is one detected symptom with its severity score
type Symptom struct {
	Name     string
	Severity int
}

// Analysis holds the server-side medical analysis of a bot message
type Analysis struct {
	Symptoms          []Symptom
	OverallConfidence float64
	Urgency           string
	RequiresEmergency bool
	Recommendations   []string
}

// Message is one entry of the conversation log. Kind, OriginalContent
// and Timestamp are fixed at append time and never change afterwards;
// display-only state (show-original, pending) lives in the Store, not here.
type Message struct {
	Kind              Kind
	Content           string
	OriginalContent   string
	TranslatedContent string
	Language          Language
	Timestamp         time.Time
	Audio             []byte
	Analysis          *Analysis
}

// Store is the ordered conversation log. Messages are appended in
// arrival order and never removed or reordered.
type Store struct {
	mu           sync.RWMutex
	messages     []Message
	showOriginal map[int]bool
	pending      map[int]bool
}

// New creates an empty conversation store
func New() *Store {
	return &Store{
		showOriginal: make(map[int]bool),
		pending:      make(map[int]bool),
	}
}

// Append adds a message to the end of the log and returns its index
func (s *Store) Append(msg Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return len(s.messages) - 1
}

// AppendPending adds a locally-sent user message whose delivery is not
// yet confirmed. The pending flag is display state; the entry itself is
// permanent either way.
func (s *Store) AppendPending(msg Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	idx := len(s.messages) - 1
	s.pending[idx] = true
	return idx
}

// ConfirmPending clears the pending flag on every user message. Called
// when an inbound response arrives, which implies delivery of what was
// sent before it.
func (s *Store) ConfirmPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx := range s.pending {
		delete(s.pending, idx)
	}
}

// IsPending reports whether the message at idx awaits delivery confirmation
func (s *Store) IsPending(idx int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[idx]
}

// Len returns the number of messages in the log
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Messages returns a snapshot of the log in insertion order
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Message returns the message at idx and whether it exists
func (s *Store) Message(idx int) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.messages) {
		return Message{}, false
	}
	return s.messages[idx], true
}

// ToggleOriginal flips the show-original flag for the message at idx.
// The flag is stored outside the Message entity.
func (s *Store) ToggleOriginal(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.messages) {
		return
	}
	s.showOriginal[idx] = !s.showOriginal[idx]
}

// ShowOriginal reports whether the message at idx should display its
// original, untranslated text
func (s *Store) ShowOriginal(idx int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showOriginal[idx]
}

// DisplayText returns the text to render for the message at idx,
// honoring the show-original flag
func (s *Store) DisplayText(idx int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.messages) {
		return ""
	}
	msg := s.messages[idx]
	if s.showOriginal[idx] && msg.OriginalContent != "" {
		return msg.OriginalContent
	}
	return msg.Content
}
