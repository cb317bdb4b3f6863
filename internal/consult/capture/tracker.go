// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     capture
// Description: Recording stop decision based on observed speech
// License:     MIT
// ============================================================================

package capture

import "time"

// Clock supplies the current time. Injected so the stop logic can be
// tested without waiting in real time.
type Clock func() time.Time

// Tracker decides when a recording should stop on its own. A recording
// never auto-stops before the minimum duration has passed; after that
// it stops once the configured silence delay has elapsed since the last
// detected speech. The recording start counts as the last speech until
// real speech is observed, so a fully silent recording still ends.
type Tracker struct {
	minDuration  time.Duration
	silenceDelay time.Duration
	maxDuration  time.Duration
	clock        Clock

	start      time.Time
	lastSpeech time.Time
	began      bool
}

// NewTracker creates a tracker with the given thresholds. A zero or
// negative maxDuration disables the hard cap.
func NewTracker(minDuration, silenceDelay, maxDuration time.Duration, clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		minDuration:  minDuration,
		silenceDelay: silenceDelay,
		maxDuration:  maxDuration,
		clock:        clock,
	}
}

// Begin marks the start of a recording
func (t *Tracker) Begin() {
	now := t.clock()
	t.start = now
	t.lastSpeech = now
	t.began = true
}

// Observe records one detector verdict
func (t *Tracker) Observe(isSpeech bool) {
	if isSpeech {
		t.lastSpeech = t.clock()
	}
}

// ShouldStop reports whether the recording should end now
func (t *Tracker) ShouldStop() bool {
	if !t.began {
		return false
	}
	now := t.clock()
	elapsed := now.Sub(t.start)

	if t.maxDuration > 0 && elapsed >= t.maxDuration {
		return true
	}
	if elapsed < t.minDuration {
		return false
	}
	return now.Sub(t.lastSpeech) >= t.silenceDelay
}

// Elapsed returns the time since the recording began
func (t *Tracker) Elapsed() time.Duration {
	if !t.began {
		return 0
	}
	return t.clock().Sub(t.start)
}
