// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     prefs
// Description: Persisted user language/voice preferences
// License:     MIT
// ============================================================================

package prefs

import (
	"encoding/json"
	"fmt"
	"sync"
)

// VoicePreferences holds speech synthesis preferences
type VoicePreferences struct {
	Enabled bool    `json:"enabled"`
	Gender  string  `json:"gender"`
	Speed   float64 `json:"speed"`
}

// Preferences is the persisted preference blob. The zero value is not
// usable; go through a Resolver so defaults are filled in.
type Preferences struct {
	InterfaceLanguage string           `json:"interface"`
	PreferredLanguage string           `json:"preferred"`
	AutoDetect        bool             `json:"autoDetect"`
	Voice             VoicePreferences `json:"voice"`
}

// Defaults returns the built-in preference defaults
func Defaults() Preferences {
	return Preferences{
		InterfaceLanguage: "en",
		PreferredLanguage: "en",
		AutoDetect:        true,
		Voice: VoicePreferences{
			Enabled: true,
			Gender:  "female",
			Speed:   1.0,
		},
	}
}

// VoiceUpdate is a partial change to the voice preferences
type VoiceUpdate struct {
	Enabled *bool
	Gender  *string
	Speed   *float64
}

// Update is a partial change to the preferences. Nil fields are left
// untouched by Resolver.Update.
type Update struct {
	InterfaceLanguage *string
	PreferredLanguage *string
	AutoDetect        *bool
	Voice             *VoiceUpdate
}

// Resolver is the single writer for preferences. All components read
// through Current; changes go through Update, which always persists the
// full merged object.
type Resolver struct {
	mu      sync.RWMutex
	storage Storage
	current Preferences
	loaded  bool
}

// NewResolver creates a resolver backed by the given storage
func NewResolver(storage Storage) *Resolver {
	return &Resolver{
		storage: storage,
		current: Defaults(),
	}
}

// Load reads the persisted blob, merging it over the defaults. Missing
// fields keep their default values. A missing blob is not an error.
func (r *Resolver) Load() (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs := Defaults()

	data, err := r.storage.Read()
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(data) > 0 {
		// Decode over the defaults so absent fields keep them. AutoDetect
		// and Voice.Enabled are raw booleans in the blob, so an explicit
		// false must survive the merge; json.Unmarshal into the prefilled
		// struct gives exactly that.
		if err := json.Unmarshal(data, &prefs); err != nil {
			return Preferences{}, fmt.Errorf("invalid preferences blob: %w", err)
		}
	}
	if prefs.Voice.Speed <= 0 {
		prefs.Voice.Speed = 1.0
	}
	if prefs.Voice.Gender == "" {
		prefs.Voice.Gender = "female"
	}
	if prefs.InterfaceLanguage == "" {
		prefs.InterfaceLanguage = "en"
	}
	if prefs.PreferredLanguage == "" {
		prefs.PreferredLanguage = "en"
	}

	r.current = prefs
	r.loaded = true
	return prefs, nil
}

// Current returns the effective preferences. Loads lazily on first use.
func (r *Resolver) Current() Preferences {
	r.mu.RLock()
	loaded := r.loaded
	current := r.current
	r.mu.RUnlock()

	if loaded {
		return current
	}
	prefs, err := r.Load()
	if err != nil {
		return Defaults()
	}
	return prefs
}

// Update merges the partial change into the working preferences,
// persists the full merged object and returns the new effective
// preferences. The whole object is written every time so a later read
// never sees a blob with missing sibling fields.
func (r *Resolver) Update(u Update) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := r.current
	if u.InterfaceLanguage != nil {
		merged.InterfaceLanguage = *u.InterfaceLanguage
	}
	if u.PreferredLanguage != nil {
		merged.PreferredLanguage = *u.PreferredLanguage
	}
	if u.AutoDetect != nil {
		merged.AutoDetect = *u.AutoDetect
	}
	if u.Voice != nil {
		if u.Voice.Enabled != nil {
			merged.Voice.Enabled = *u.Voice.Enabled
		}
		if u.Voice.Gender != nil {
			merged.Voice.Gender = *u.Voice.Gender
		}
		if u.Voice.Speed != nil {
			merged.Voice.Speed = *u.Voice.Speed
		}
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := r.storage.Write(data); err != nil {
		return Preferences{}, fmt.Errorf("failed to persist preferences: %w", err)
	}

	r.current = merged
	r.loaded = true
	return merged, nil
}

// SetPreferredLanguage is a convenience wrapper used by the auto-detect
// path when the speech service reports a different source language
func (r *Resolver) SetPreferredLanguage(lang string) (Preferences, error) {
	return r.Update(Update{PreferredLanguage: &lang})
}
