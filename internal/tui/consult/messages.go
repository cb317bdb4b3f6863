// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consulttui
// Description: Message types for async operations in the consultation TUI
// License:     MIT
// ============================================================================

package consulttui

import (
	"time"

	"github.com/arogya/teleconsult/internal/consult"
	"github.com/arogya/teleconsult/internal/consult/channel"
)

// Message types for tea.Cmd async operations

// inboundEventMsg is sent for each event arriving on the channel.
// ok is false when the channel has ended.
type inboundEventMsg struct {
	event channel.InboundEvent
	ok    bool
}

// noticeMsg carries an asynchronous session notice (voice path
// failures and the like)
type noticeMsg struct {
	notice consult.Notice
	ok     bool
}

// inputStateMsg is sent when the voice-input state machine transitions
type inputStateMsg struct {
	from consult.State
	to   consult.State
}

// tickMsg drives periodic redraws (recording elapsed time, playback
// position)
type tickMsg time.Time
