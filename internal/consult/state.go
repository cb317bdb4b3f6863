// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consult
// Description: Session input state machine
// License:     MIT
// ============================================================================

package consult

import (
	"sync"
	"time"
)

// State is the voice-input state of the session
type State int

const (
	// StateIdle - ready for text or voice input
	StateIdle State = iota

	// StateRecording - microphone is live
	StateRecording

	// StateProcessing - recording finished, transcription in flight
	StateProcessing

	// StateError - input path failed, reset required
	StateError
)

// String returns the display name of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Ready"
	case StateRecording:
		return "Recording..."
	case StateProcessing:
		return "Processing..."
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a short marker for the state
func (s State) Icon() string {
	switch s {
	case StateIdle:
		return "⏸"
	case StateRecording:
		return "🎤"
	case StateProcessing:
		return "⚙"
	case StateError:
		return "✗"
	default:
		return "?"
	}
}

// StateChangeListener is notified after each transition
type StateChangeListener func(oldState, newState State)

// StateMachine guards the input state transitions
type StateMachine struct {
	mu        sync.RWMutex
	current   State
	previous  State
	enteredAt time.Time
	listeners []StateChangeListener
}

// NewStateMachine creates a machine in the idle state
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current:   StateIdle,
		enteredAt: time.Now(),
	}
}

// Current returns the current state
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Previous returns the state before the last transition
func (sm *StateMachine) Previous() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.previous
}

// StateDuration returns how long the current state has been active
func (sm *StateMachine) StateDuration() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return time.Since(sm.enteredAt)
}

var validTransitions = map[State][]State{
	StateIdle:       {StateRecording, StateError},
	StateRecording:  {StateProcessing, StateIdle, StateError},
	StateProcessing: {StateIdle, StateError},
	StateError:      {StateIdle},
}

// Transition moves to a new state if the transition is allowed and
// reports whether it happened
func (sm *StateMachine) Transition(to State) bool {
	sm.mu.Lock()
	from := sm.current
	if !isValidTransition(from, to) {
		sm.mu.Unlock()
		return false
	}
	sm.previous = from
	sm.current = to
	sm.enteredAt = time.Now()
	listeners := sm.listeners
	sm.mu.Unlock()

	for _, listener := range listeners {
		listener(from, to)
	}
	return true
}

// AddListener registers a transition listener
func (sm *StateMachine) AddListener(listener StateChangeListener) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.listeners = append(sm.listeners, listener)
}

func isValidTransition(from, to State) bool {
	for _, valid := range validTransitions[from] {
		if valid == to {
			return true
		}
	}
	return false
}

// Reset forces the machine back to idle from any state
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	from := sm.current
	sm.previous = from
	sm.current = StateIdle
	sm.enteredAt = time.Now()
	listeners := sm.listeners
	sm.mu.Unlock()

	for _, listener := range listeners {
		listener(from, StateIdle)
	}
}
