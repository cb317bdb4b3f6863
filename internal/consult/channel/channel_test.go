package channel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arogya/teleconsult/internal/consult/store"
)

var upgrader = websocket.Upgrader{}

// newTestServer runs handler for each WebSocket connection and returns
// the ws:// URL of the server.
func newTestServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func mustOpen(t *testing.T, ch *Channel, init InitPayload) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ch.Open(ctx, init); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
}

func recvEvent(t *testing.T, ch *Channel) InboundEvent {
	t.Helper()
	select {
	case ev, ok := <-ch.Events():
		if !ok {
			t.Fatal("events channel closed while expecting an event")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return InboundEvent{}
}

func TestChannel_OpenSendsInitFirst(t *testing.T) {
	gotInit := make(chan initFrame, 1)
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Errorf("reading first frame: %v", err)
			return
		}
		gotInit <- frame
		conn.WriteJSON(InboundEvent{Type: EventWelcome, Content: "hello"})
		// Hold the connection until the client closes
		conn.ReadMessage()
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{
		Language:         "hi",
		AutoDetect:       true,
		VoicePreferences: VoicePrefsInit{Enabled: true, Gender: "female"},
	})
	defer ch.Close()

	frame := <-gotInit
	if frame.Type != "init" {
		t.Errorf("first frame type = %q, want init", frame.Type)
	}
	if frame.Preferences.Language != "hi" || !frame.Preferences.AutoDetect {
		t.Errorf("init preferences = %+v", frame.Preferences)
	}

	if ev := recvEvent(t, ch); ev.Type != EventWelcome {
		t.Errorf("event type = %q, want welcome", ev.Type)
	}
	if ch.State() != StateOpen {
		t.Errorf("State = %q, want open", ch.State())
	}
}

func TestChannel_EventsDeliveredInOrder(t *testing.T) {
	const n = 20
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		for i := 0; i < n; i++ {
			conn.WriteJSON(InboundEvent{Type: EventResponse, Content: fmt.Sprintf("msg-%d", i)})
		}
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	defer ch.Close()

	for i := 0; i < n; i++ {
		ev := recvEvent(t, ch)
		if ev.Content != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("event %d content = %q, want msg-%d", i, ev.Content, i)
		}
	}
}

func TestChannel_ErrorEventIsNotFatal(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		conn.WriteJSON(InboundEvent{Type: EventError, Content: "translation unavailable"})
		conn.WriteJSON(InboundEvent{Type: EventResponse, Content: "still here"})
		// Hold the connection until the client closes
		conn.ReadMessage()
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	defer ch.Close()

	ev := recvEvent(t, ch)
	if !ev.IsError() {
		t.Fatalf("first event type = %q, want error", ev.Type)
	}
	if ev := recvEvent(t, ch); ev.Content != "still here" {
		t.Errorf("event after error = %q, channel must stay usable", ev.Content)
	}
	if ch.State() != StateOpen {
		t.Errorf("State = %q after in-band error, want open", ch.State())
	}
}

func TestChannel_MalformedFrameDropped(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		conn.WriteMessage(websocket.TextMessage, []byte(`{not json`))
		conn.WriteJSON(InboundEvent{Type: EventResponse, Content: "after garbage"})
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	defer ch.Close()

	if ev := recvEvent(t, ch); ev.Content != "after garbage" {
		t.Errorf("event = %q, malformed frame must be skipped", ev.Content)
	}
}

func TestChannel_SendWhenNotOpen(t *testing.T) {
	ch := New("ws://localhost:0/never", nil)
	if err := ch.Send(NewOutboundMessage("hi", OutboundLanguage{}, OutboundPreferences{})); err != ErrNotOpen {
		t.Errorf("Send() before open = %v, want ErrNotOpen", err)
	}
}

func TestChannel_SendAfterClose(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		// Hold the connection until the client closes
		conn.ReadMessage()
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	if err := ch.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if ch.State() != StateClosed {
		t.Errorf("State = %q, want closed", ch.State())
	}
	if err := ch.Send(NewOutboundMessage("hi", OutboundLanguage{}, OutboundPreferences{})); err != ErrNotOpen {
		t.Errorf("Send() after close = %v, want ErrNotOpen", err)
	}
}

func TestChannel_DoubleOpen(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		conn.ReadMessage()
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	defer ch.Close()

	if err := ch.Open(context.Background(), InitPayload{}); err != ErrAlreadyOpen {
		t.Errorf("second Open() = %v, want ErrAlreadyOpen", err)
	}
}

func TestChannel_TransportFaultEndsChannel(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		conn.WriteJSON(InboundEvent{Type: EventResponse, Content: "last words"})
		// Drop the connection without a close handshake
		conn.Close()
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})

	recvEvent(t, ch)

	select {
	case _, ok := <-ch.Events():
		if ok {
			t.Fatal("expected events channel to close after transport fault")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events channel did not close after transport fault")
	}

	if ch.State() != StateError {
		t.Errorf("State = %q after transport fault, want error", ch.State())
	}
	if ch.Err() == nil {
		t.Error("Err() = nil after transport fault")
	}
	if err := ch.Send(NewOutboundMessage("hi", OutboundLanguage{}, OutboundPreferences{})); err != ErrNotOpen {
		t.Errorf("Send() after fault = %v, want ErrNotOpen", err)
	}
}

func TestChannel_SendWiresOutboundFrame(t *testing.T) {
	gotMsg := make(chan OutboundMessage, 1)
	url := newTestServer(t, func(conn *websocket.Conn) {
		var frame initFrame
		conn.ReadJSON(&frame)
		var msg OutboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("reading message frame: %v", err)
			return
		}
		gotMsg <- msg
	})

	ch := New(url, nil)
	mustOpen(t, ch, InitPayload{Language: "en"})
	defer ch.Close()

	out := NewOutboundMessage("I have a fever",
		OutboundLanguage{Source: "en", AutoDetect: true},
		OutboundPreferences{Voice: true, ShowOriginalText: false})
	if err := ch.Send(out); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msg := <-gotMsg
	if msg.Type != "message" {
		t.Errorf("frame type = %q, want message", msg.Type)
	}
	if msg.Content != "I have a fever" || msg.Language.Source != "en" || !msg.Preferences.Voice {
		t.Errorf("frame = %+v", msg)
	}
}

func TestInboundEvent_ToMessage(t *testing.T) {
	audio := []byte("RIFFfakewav")
	raw := fmt.Sprintf(`{
		"type": "response",
		"content": "आपको कब से बुखार है?",
		"original_message": "How long have you had the fever?",
		"translated_message": "आपको कब से बुखार है?",
		"language": {"source": "en", "target": "hi", "detected": true, "confidence": 0.94},
		"timestamp": "2026-04-02T09:30:00Z",
		"audio": %q,
		"symptoms": [{"name": "fever", "severity": 4}],
		"confidence_scores": {"overall": 0.87},
		"urgency": "medium",
		"requires_emergency": false,
		"recommendations": ["rest", "hydration"]
	}`, base64.StdEncoding.EncodeToString(audio))

	var ev InboundEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	msg := ev.ToMessage()
	if msg.Kind != store.KindBot {
		t.Errorf("Kind = %v, want bot", msg.Kind)
	}
	if msg.OriginalContent != "How long have you had the fever?" {
		t.Errorf("OriginalContent = %q", msg.OriginalContent)
	}
	if msg.Language.Target != "hi" || !msg.Language.AutoDetected || msg.Language.Confidence != 0.94 {
		t.Errorf("Language = %+v", msg.Language)
	}
	if string(msg.Audio) != string(audio) {
		t.Errorf("Audio = %q, want decoded payload", msg.Audio)
	}
	if msg.Analysis == nil {
		t.Fatal("Analysis = nil")
	}
	if msg.Analysis.OverallConfidence != 0.87 || msg.Analysis.Urgency != "medium" {
		t.Errorf("Analysis = %+v", msg.Analysis)
	}
	if len(msg.Analysis.Symptoms) != 1 || msg.Analysis.Symptoms[0].Name != "fever" {
		t.Errorf("Symptoms = %v", msg.Analysis.Symptoms)
	}
	want := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
	}
}

func TestInboundEvent_ToMessageMinimal(t *testing.T) {
	ev := InboundEvent{Type: EventResponse, Content: "hello"}
	msg := ev.ToMessage()

	if msg.Analysis != nil {
		t.Error("Analysis != nil for plain response")
	}
	if msg.OriginalContent != "hello" {
		t.Errorf("OriginalContent = %q, want content fallback", msg.OriginalContent)
	}
	if msg.Audio != nil {
		t.Error("Audio != nil without audio field")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp is zero, want receive-time fallback")
	}
}

func TestInboundEvent_ToMessageBadAudio(t *testing.T) {
	ev := InboundEvent{Type: EventResponse, Content: "hi", Audio: "%%not-base64%%"}
	msg := ev.ToMessage()
	if msg.Audio != nil {
		t.Errorf("Audio = %q, undecodable audio must be dropped", msg.Audio)
	}
}
