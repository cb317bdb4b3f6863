// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     capture
// Description: Voice capture pipeline with automatic silence stop
// License:     MIT
// ============================================================================

package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arogya/teleconsult/pkg/core/config"
	"github.com/arogya/teleconsult/pkg/core/logging"
)

// ErrBusy is returned by Start while a recording is in progress
var ErrBusy = errors.New("capture pipeline is busy")

// ErrTooShort marks a recording that ended before the minimum duration
var ErrTooShort = errors.New("recording too short")

// State is the pipeline state
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
)

// Recording is the outcome of one capture run. When Err is nil, WAV
// holds the packaged audio.
type Recording struct {
	WAV      []byte
	Samples  []float32
	Duration time.Duration
	Err      error
}

// Pipeline runs one recording at a time: it drains the source, feeds
// every buffer to the detector and stops on silence, on the hard cap,
// on Stop or when the context ends. The source stream is released on
// every exit path.
type Pipeline struct {
	mu       sync.Mutex
	source   Source
	detector Detector
	cfg      config.CaptureConfig
	clock    Clock
	logger   *logging.Logger

	state   State
	stop    chan struct{}
	stopped bool
}

// NewPipeline creates a pipeline over the given source and detector.
// The pipeline stops the source after each run but does not close
// either collaborator; the caller owns them.
func NewPipeline(source Source, detector Detector, cfg config.CaptureConfig, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.New("capture")
	}
	return &Pipeline{
		source:   source,
		detector: detector,
		cfg:      cfg,
		clock:    time.Now,
		logger:   logger,
		state:    StateIdle,
	}
}

// SetClock replaces the time source, for deterministic tests
func (p *Pipeline) SetClock(clock Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
}

// State returns the current pipeline state
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start begins a recording. The returned channel delivers exactly one
// Recording and is then closed. A second Start while a recording is in
// progress returns ErrBusy.
func (p *Pipeline) Start(ctx context.Context) (<-chan Recording, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state = StateRecording
	p.stop = make(chan struct{})
	p.stopped = false
	clock := p.clock
	p.mu.Unlock()

	if err := p.source.Start(ctx); err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return nil, err
	}

	tracker := NewTracker(
		p.cfg.MinRecordingDuration.Duration,
		p.cfg.SilenceDelay.Duration,
		p.cfg.MaxRecordingDuration.Duration,
		clock,
	)
	tracker.Begin()

	result := make(chan Recording, 1)
	go p.run(ctx, tracker, result)
	return result, nil
}

// Stop ends the current recording early. Safe to call when idle and
// more than once.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil && !p.stopped {
		p.stopped = true
		close(p.stop)
	}
}

func (p *Pipeline) run(ctx context.Context, tracker *Tracker, result chan Recording) {
	var samples []float32
	var runErr error

	defer func() {
		// Release the stream exactly once, on every exit path
		if err := p.source.Stop(); err != nil {
			p.logger.Warn("failed to stop source", "error", err)
		}

		rec := Recording{
			Samples:  samples,
			Duration: tracker.Elapsed(),
			Err:      runErr,
		}
		if rec.Err == nil && rec.Duration < p.cfg.MinRecordingDuration.Duration {
			rec.Err = ErrTooShort
		}
		if rec.Err == nil {
			rec.WAV = EncodeWAV(samples, p.source.SampleRate())
		}

		p.mu.Lock()
		p.state = StateIdle
		p.stop = nil
		p.mu.Unlock()

		result <- rec
		close(result)
	}()

	output := p.source.Output()
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			return
		case <-p.stopSignal():
			return
		case buf, ok := <-output:
			if !ok {
				return
			}
			samples = append(samples, buf...)

			isSpeech, err := p.detector.IsSpeech(buf)
			if err != nil {
				p.logger.Warn("detector failed, treating buffer as speech", "error", err)
				isSpeech = true
			}
			tracker.Observe(isSpeech)

			if tracker.ShouldStop() {
				return
			}
		}
	}
}

func (p *Pipeline) stopSignal() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop
}
