// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     channel
// Description: WebSocket session channel to the consultation backend
// License:     MIT
// ============================================================================

package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arogya/teleconsult/pkg/core/logging"
)

// State is the lifecycle state of the channel
type State string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
	StateClosed     State = "closed"
	StateError      State = "error"
)

// ErrNotOpen is returned by Send when the channel is not open
var ErrNotOpen = errors.New("channel is not open")

// ErrAlreadyOpen is returned by Open when a connection is already live
var ErrAlreadyOpen = errors.New("channel is already open")

const defaultHandshakeTimeout = 10 * time.Second

// Channel is a session-scoped connection to the consultation backend.
// One channel serves one consultation; after Close or a transport fault
// a new channel must be created, there is no reconnect.
//
// Events are read by a single goroutine and delivered in receive order
// on the Events channel. The Events channel is closed when the
// connection ends, for whatever reason; Err then tells the two ends
// apart.
type Channel struct {
	mu     sync.RWMutex
	url    string
	conn   *websocket.Conn
	state  State
	err    error
	events chan InboundEvent
	logger *logging.Logger

	handshakeTimeout time.Duration
}

// New creates a channel for the given endpoint URL. The consultation id
// is part of the URL path, so the caller builds the full URL.
func New(url string, logger *logging.Logger) *Channel {
	if logger == nil {
		logger = logging.New("channel")
	}
	return &Channel{
		url:              url,
		state:            StateClosed,
		logger:           logger,
		handshakeTimeout: defaultHandshakeTimeout,
	}
}

// State returns the current lifecycle state
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the transport fault that ended the channel, if any
func (c *Channel) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Events returns the inbound event stream. The channel is closed when
// the connection ends. Nil until Open succeeds.
func (c *Channel) Events() <-chan InboundEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events
}

// Open dials the backend, sends the init payload and starts the reader.
// At most one connection is live per channel; a second Open while one
// is up returns ErrAlreadyOpen.
func (c *Channel) Open(ctx context.Context, init InitPayload) error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.state = StateConnecting
	c.err = nil
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateError
		c.err = err
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	// Init must be the first frame on the wire, before any user message
	if err := conn.WriteJSON(initFrame{Type: "init", Preferences: init}); err != nil {
		conn.Close()
		c.mu.Lock()
		c.state = StateError
		c.err = err
		c.mu.Unlock()
		return fmt.Errorf("failed to send init: %w", err)
	}

	events := make(chan InboundEvent, 32)
	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.events = events
	c.mu.Unlock()

	c.logger.Info("channel open", "url", c.url)
	go c.readLoop(conn, events)

	return nil
}

// Send writes one user message frame. Only valid while the channel is
// open.
func (c *Channel) Send(msg OutboundMessage) error {
	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()

	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}

	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close shuts the connection down deliberately. Safe to call in any
// state and more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed, StateClosing, StateError:
		return nil
	}

	c.state = StateClosing
	if c.conn != nil {
		// Best effort close frame; the peer may already be gone
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err := c.conn.Close()
		c.conn = nil
		c.state = StateClosed
		return err
	}
	c.state = StateClosed
	return nil
}

// readLoop is the single reader. It delivers events in receive order
// and ends the channel on the first transport fault. In-band error
// events are delivered like any other event and do not end the channel.
func (c *Channel) readLoop(conn *websocket.Conn, events chan InboundEvent) {
	defer close(events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			deliberate := c.state == StateClosing || c.state == StateClosed
			if !deliberate {
				c.state = StateError
				c.err = err
				if c.conn != nil {
					c.conn.Close()
					c.conn = nil
				}
			}
			c.mu.Unlock()
			if !deliberate {
				c.logger.Warn("channel transport fault", "error", err)
			}
			return
		}

		var event InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Malformed frames are dropped, not fatal
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		if event.IsError() {
			c.logger.Warn("backend error event", "content", event.Content)
		}

		events <- event
	}
}
