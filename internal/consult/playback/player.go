// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     playback
// Description: Single global audio player with supersede semantics
// License:     MIT
// ============================================================================

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/arogya/teleconsult/pkg/core/logging"
)

// State is the player state
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

const (
	chunkFrames = 1024
	minSpeed    = 0.25
	maxSpeed    = 4.0
	maxVolume   = 2.0
)

// Options set the initial parameters of one playback
type Options struct {
	Volume float64 // 0..2, 0 means default (1.0)
	Speed  float64 // 0.25..4, 0 means default (1.0)
}

// Player holds the session's one playback handle. Starting a new
// playback stops the active one first, so audio never overlaps. All
// controls act on the active playback only; once a playback is
// superseded its resources are released and its handle is dead.
type Player struct {
	mu     sync.Mutex
	engine Engine
	logger *logging.Logger

	state   State
	clip    Clip
	cursor  float64 // source sample position
	volume  float64
	speed   float64
	stop    chan struct{}
	stopped bool
	done    chan struct{}
}

// NewPlayer creates an idle player over the given engine
func NewPlayer(engine Engine, logger *logging.Logger) *Player {
	if logger == nil {
		logger = logging.New("playback")
	}
	return &Player{
		engine: engine,
		logger: logger,
		state:  StateIdle,
		volume: 1.0,
		speed:  1.0,
	}
}

// Play decodes the WAV payload and starts playback, stopping any
// active playback first
func (p *Player) Play(wav []byte, opts Options) error {
	clip, err := ParseWAV(wav)
	if err != nil {
		return fmt.Errorf("undecodable audio payload: %w", err)
	}
	return p.PlayClip(clip, opts)
}

// PlayClip starts playback of an already decoded clip
func (p *Player) PlayClip(clip Clip, opts Options) error {
	if clip.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", clip.SampleRate)
	}

	p.Stop()

	volume := opts.Volume
	if volume <= 0 {
		volume = 1.0
	}
	if volume > maxVolume {
		volume = maxVolume
	}
	speed := clampSpeed(opts.Speed)

	p.mu.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done
	p.stopped = false
	p.state = StatePlaying
	p.clip = clip
	p.cursor = 0
	p.volume = volume
	p.speed = speed
	p.mu.Unlock()

	go p.run(clip, stop, done)
	return nil
}

func (p *Player) run(clip Clip, stop, done chan struct{}) {
	defer close(done)

	stream, err := p.engine.Open(clip.SampleRate)
	if err != nil {
		p.logger.Error("failed to open output stream", "error", err)
		p.finish(done)
		return
	}
	defer stream.Close()

	chunk := make([]float32, chunkFrames)
	for {
		select {
		case <-stop:
			return
		default:
		}

		p.mu.Lock()
		if p.state == StatePaused {
			p.mu.Unlock()
			select {
			case <-stop:
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}
		n := 0
		for n < chunkFrames {
			idx := int(p.cursor)
			if idx >= len(clip.Samples) {
				break
			}
			chunk[n] = clip.Samples[idx] * float32(p.volume)
			p.cursor += p.speed
			n++
		}
		p.mu.Unlock()

		if n == 0 {
			break
		}
		if err := stream.Write(chunk[:n]); err != nil {
			p.logger.Warn("output stream write failed", "error", err)
			break
		}
	}

	p.finish(done)
}

// finish resets to idle unless a newer playback has taken over
func (p *Player) finish(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.state = StateIdle
		p.cursor = 0
	}
}

// Stop ends the active playback and waits for its resources to be
// released. Safe to call when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	if stop != nil && !p.stopped {
		p.stopped = true
		close(stop)
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}

	p.mu.Lock()
	if p.done == done {
		p.state = StateIdle
		p.cursor = 0
		p.stop, p.done = nil, nil
	}
	p.mu.Unlock()
}

// Toggle pauses a playing stream or resumes a paused one
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StatePlaying:
		p.state = StatePaused
	case StatePaused:
		p.state = StatePlaying
	}
}

// Seek moves the active playback to the given position. Positions past
// the end finish the playback.
func (p *Player) Seek(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle {
		return
	}
	if pos < 0 {
		pos = 0
	}
	p.cursor = pos.Seconds() * float64(p.clip.SampleRate)
}

// SetVolume adjusts the active playback volume
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if volume < 0 {
		volume = 0
	}
	if volume > maxVolume {
		volume = maxVolume
	}
	p.volume = volume
}

// SetSpeed adjusts the active playback speed
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = clampSpeed(speed)
}

// State returns the current player state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current position within the active playback
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle || p.clip.SampleRate <= 0 {
		return 0
	}
	return time.Duration(p.cursor / float64(p.clip.SampleRate) * float64(time.Second))
}

// Duration returns the length of the active clip
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle {
		return 0
	}
	return p.clip.Duration()
}

func clampSpeed(speed float64) float64 {
	if speed <= 0 {
		return 1.0
	}
	if speed < minSpeed {
		return minSpeed
	}
	if speed > maxSpeed {
		return maxSpeed
	}
	return speed
}
