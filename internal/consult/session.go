// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consult
// Description: Consultation session orchestrator
// License:     MIT
// ============================================================================

package consult

import (
	"context"
	"errors"
	"fmt"

	"github.com/arogya/teleconsult/internal/consult/capture"
	"github.com/arogya/teleconsult/internal/consult/channel"
	"github.com/arogya/teleconsult/internal/consult/playback"
	"github.com/arogya/teleconsult/internal/consult/prefs"
	"github.com/arogya/teleconsult/internal/consult/store"
	"github.com/arogya/teleconsult/internal/consult/stt"
	"github.com/arogya/teleconsult/pkg/core/logging"
)

// transport is the session's view of the consultation channel
type transport interface {
	Open(ctx context.Context, init channel.InitPayload) error
	Send(msg channel.OutboundMessage) error
	Events() <-chan channel.InboundEvent
	Close() error
	State() channel.State
}

// NoticeLevel classifies a user-visible notice
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a non-blocking, user-visible notification
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Outcome describes what an inbound event did to the session
type Outcome struct {
	// MessageIndex is the store index of an appended bot message, or -1
	MessageIndex int

	// Notice is set for warnings and in-band errors
	Notice *Notice
}

// Session owns one consultation from open to teardown: the channel,
// the capture pipeline, the playback handle, the store and the
// preferences all hang off it. Teardown stops recording first, then
// playback, then closes the channel.
type Session struct {
	id          string
	transport   transport
	pipeline    *capture.Pipeline
	player      *playback.Player
	store       *store.Store
	prefs       *prefs.Resolver
	transcriber stt.Transcriber
	machine     *StateMachine
	logger      *logging.Logger
	notices     chan Notice
}

// SessionDeps bundles the collaborators of a session
type SessionDeps struct {
	Transport   transport
	Pipeline    *capture.Pipeline
	Player      *playback.Player
	Store       *store.Store
	Prefs       *prefs.Resolver
	Transcriber stt.Transcriber
	Logger      *logging.Logger
}

// NewSession creates a session for the given consultation id
func NewSession(id string, deps SessionDeps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.New("session")
	}
	return &Session{
		id:          id,
		transport:   deps.Transport,
		pipeline:    deps.Pipeline,
		player:      deps.Player,
		store:       deps.Store,
		prefs:       deps.Prefs,
		transcriber: deps.Transcriber,
		machine:     NewStateMachine(),
		logger:      logger,
		notices:     make(chan Notice, 16),
	}
}

// ID returns the consultation id
func (s *Session) ID() string { return s.id }

// Store returns the conversation store
func (s *Session) Store() *store.Store { return s.store }

// Prefs returns the preference resolver
func (s *Session) Prefs() *prefs.Resolver { return s.prefs }

// Player returns the session's playback handle
func (s *Session) Player() *playback.Player { return s.player }

// InputState returns the voice-input state
func (s *Session) InputState() State { return s.machine.Current() }

// StateMachine exposes the input state machine for listeners
func (s *Session) StateMachine() *StateMachine { return s.machine }

// Events returns the ordered inbound event stream
func (s *Session) Events() <-chan channel.InboundEvent { return s.transport.Events() }

// ChannelState returns the connection state of the consultation channel
func (s *Session) ChannelState() channel.State { return s.transport.State() }

// Notices returns asynchronous user-visible notices (voice path
// failures and the like)
func (s *Session) Notices() <-chan Notice { return s.notices }

// Open connects the channel and sends the init payload built from the
// current preferences
func (s *Session) Open(ctx context.Context) error {
	p := s.prefs.Current()
	return s.transport.Open(ctx, channel.InitPayload{
		Language:   p.PreferredLanguage,
		AutoDetect: p.AutoDetect,
		VoicePreferences: channel.VoicePrefsInit{
			Enabled: p.Voice.Enabled,
			Gender:  p.Voice.Gender,
		},
	})
}

// SendText appends the user message optimistically and sends it over
// the channel. On send failure the message stays in the store, marked
// unconfirmed, and the error is returned for the caller to surface.
func (s *Session) SendText(content string) (int, error) {
	p := s.prefs.Current()

	idx := s.store.AppendPending(store.Message{
		Kind:     store.KindUser,
		Content:  content,
		Language: store.Language{Source: p.PreferredLanguage},
	})

	msg := channel.NewOutboundMessage(content,
		channel.OutboundLanguage{Source: p.PreferredLanguage, AutoDetect: p.AutoDetect},
		channel.OutboundPreferences{Voice: p.Voice.Enabled})
	if err := s.transport.Send(msg); err != nil {
		return idx, fmt.Errorf("failed to send message: %w", err)
	}
	return idx, nil
}

// HandleEvent applies one inbound event to the session state.
// Responses and welcomes become bot messages and confirm pending user
// messages; warnings and in-band errors become notices only.
func (s *Session) HandleEvent(ev channel.InboundEvent) Outcome {
	switch ev.Type {
	case channel.EventWarning:
		return Outcome{MessageIndex: -1, Notice: &Notice{Level: NoticeWarning, Text: ev.Content}}
	case channel.EventError:
		return Outcome{MessageIndex: -1, Notice: &Notice{Level: NoticeError, Text: ev.Content}}
	}

	msg := ev.ToMessage()
	s.store.ConfirmPending()
	idx := s.store.Append(msg)

	if msg.Audio != nil && s.prefs.Current().Voice.Enabled && s.player != nil {
		opts := playback.Options{Speed: s.prefs.Current().Voice.Speed}
		if err := s.player.Play(msg.Audio, opts); err != nil {
			s.logger.Warn("voice playback failed", "error", err)
			s.notify(Notice{Level: NoticeWarning, Text: "Voice playback unavailable"})
		}
	}

	return Outcome{MessageIndex: idx}
}

// StartRecording opens the microphone and runs the capture/transcribe/
// send flow in the background. Device failures end the attempt only;
// the session stays usable for text input.
func (s *Session) StartRecording(ctx context.Context) error {
	if !s.machine.Transition(StateRecording) {
		return capture.ErrBusy
	}

	result, err := s.pipeline.Start(ctx)
	if err != nil {
		s.machine.Transition(StateIdle)
		return fmt.Errorf("failed to start recording: %w", err)
	}

	go s.awaitRecording(ctx, result)
	return nil
}

// StopRecording ends an active recording early
func (s *Session) StopRecording() {
	s.pipeline.Stop()
}

func (s *Session) awaitRecording(ctx context.Context, result <-chan capture.Recording) {
	rec := <-result

	if rec.Err != nil {
		s.machine.Transition(StateIdle)
		if errors.Is(rec.Err, capture.ErrTooShort) {
			s.notify(Notice{Level: NoticeInfo, Text: "Recording too short, please try again"})
		} else if !errors.Is(rec.Err, context.Canceled) {
			s.logger.Warn("recording failed", "error", rec.Err)
			s.notify(Notice{Level: NoticeError, Text: "Recording failed"})
		}
		return
	}

	s.machine.Transition(StateProcessing)

	p := s.prefs.Current()
	res, err := s.transcriber.Transcribe(ctx, rec.WAV, stt.Request{
		ConsultationID: s.id,
		SourceLanguage: p.PreferredLanguage,
		AutoDetect:     p.AutoDetect,
		VoiceGender:    p.Voice.Gender,
	})
	if err != nil {
		s.machine.Transition(StateIdle)
		s.logger.Warn("transcription failed", "error", err)
		s.notify(Notice{Level: NoticeError, Text: "Could not process your voice input, please retry or type instead"})
		return
	}

	if p.AutoDetect && res.Language != "" && res.Language != p.PreferredLanguage {
		if _, err := s.prefs.SetPreferredLanguage(res.Language); err != nil {
			s.logger.Warn("failed to persist detected language", "error", err)
		} else {
			s.logger.Info("detected language updated", "language", res.Language)
		}
	}

	if res.Text != "" {
		if _, err := s.SendText(res.Text); err != nil {
			s.notify(Notice{Level: NoticeError, Text: "Message could not be delivered"})
		}
	}

	s.machine.Transition(StateIdle)
}

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		// A stalled consumer must not block the voice path
	}
}

// Close tears the session down: recording first, then playback, then
// the channel. Each step releases real resources and runs even if an
// earlier step failed.
func (s *Session) Close() error {
	if s.pipeline != nil {
		s.pipeline.Stop()
	}
	if s.player != nil {
		s.player.Stop()
	}

	err := s.transport.Close()
	if err != nil {
		s.logger.Warn("channel close failed", "error", err)
	}
	s.logger.Info("session closed", "consultation_id", s.id)
	return err
}
