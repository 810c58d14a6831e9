package dispatch

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/model"
	"github.com/reportdash/realtime/internal/notify"
)

// fakeHandle records written events.
type fakeHandle struct {
	mu     sync.Mutex
	events []model.Event
}

func (f *fakeHandle) WriteEvent(e model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeHandle) Close() error { return nil }

func (f *fakeHandle) all() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Event(nil), f.events...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeHandle) {
	t.Helper()

	reg := connection.NewRegistry(connection.DefaultRegistryConfig(), nil)
	h := &fakeHandle{}
	if err := reg.Admit(h, "client-1"); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	return NewDispatcher(reg, notify.NewNotifier(reg, nil), nil), h
}

func TestDispatcher_Ping(t *testing.T) {
	d, h := newTestDispatcher(t)

	sent := time.Now().Add(-50 * time.Millisecond).Format(time.RFC3339Nano)
	frame, _ := json.Marshal(map[string]string{"type": "ping", "timestamp": sent})

	if err := d.Handle("client-1", frame); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	events := h.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	pong, ok := events[0].(*model.PongEvent)
	if !ok {
		t.Fatalf("event = %T, want *model.PongEvent", events[0])
	}
	if pong.OriginalTimestamp != sent {
		t.Errorf("OriginalTimestamp = %q, want %q", pong.OriginalTimestamp, sent)
	}
	if pong.ServerTimestamp == "" {
		t.Error("ServerTimestamp empty")
	}
}

func TestDispatcher_InvalidJSON(t *testing.T) {
	d, h := newTestDispatcher(t)

	if err := d.Handle("client-1", []byte("{not json")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	events := h.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want exactly 1 error event", len(events))
	}
	errEvent, ok := events[0].(*model.ErrorEvent)
	if !ok {
		t.Fatalf("event = %T, want *model.ErrorEvent", events[0])
	}
	if errEvent.ErrorCode != model.CodeInvalidJSON {
		t.Errorf("ErrorCode = %q, want %q", errEvent.ErrorCode, model.CodeInvalidJSON)
	}

	// Connection stays usable: a well-formed ping still gets a pong.
	frame, _ := json.Marshal(map[string]string{"type": "ping"})
	if err := d.Handle("client-1", frame); err != nil {
		t.Fatalf("Handle(ping) failed: %v", err)
	}
	events = h.all()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if _, ok := events[1].(*model.PongEvent); !ok {
		t.Errorf("second event = %T, want *model.PongEvent", events[1])
	}

	if d.Stats().ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", d.Stats().ParseErrors)
	}
}

func TestDispatcher_EchoRoundTrip(t *testing.T) {
	d, h := newTestDispatcher(t)

	raw := []byte(`{"type":"echo","payload":"hello world"}`)
	if err := d.Handle("client-1", raw); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	events := h.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	echo, ok := events[0].(*model.EchoEvent)
	if !ok {
		t.Fatalf("event = %T, want *model.EchoEvent", events[0])
	}

	var original struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(echo.OriginalMessage, &original); err != nil {
		t.Fatalf("Unmarshal original failed: %v", err)
	}
	if original.Payload != "hello world" {
		t.Errorf("payload = %q, want %q", original.Payload, "hello world")
	}
}

func TestDispatcher_SubscribeUnsubscribe(t *testing.T) {
	d, h := newTestDispatcher(t)

	tests := []struct {
		frameType  string
		wantStatus string
	}{
		{"subscribe", "subscribed"},
		{"unsubscribe", "unsubscribed"},
	}

	for _, tt := range tests {
		frame, _ := json.Marshal(map[string]string{
			"type":       tt.frameType,
			"event_type": "report_updates",
		})
		if err := d.Handle("client-1", frame); err != nil {
			t.Fatalf("Handle(%s) failed: %v", tt.frameType, err)
		}
	}

	events := h.all()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	for i, tt := range tests {
		sub, ok := events[i].(*model.SubscriptionEvent)
		if !ok {
			t.Fatalf("event[%d] = %T, want *model.SubscriptionEvent", i, events[i])
		}
		if sub.Status != tt.wantStatus {
			t.Errorf("Status = %q, want %q", sub.Status, tt.wantStatus)
		}
		if sub.EventType != "report_updates" {
			t.Errorf("EventType = %q, want report_updates", sub.EventType)
		}
	}
}

func TestDispatcher_UnknownType(t *testing.T) {
	d, h := newTestDispatcher(t)

	raw := []byte(`{"type":"launch_missiles"}`)
	if err := d.Handle("client-1", raw); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	events := h.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	errEvent, ok := events[0].(*model.ErrorEvent)
	if !ok {
		t.Fatalf("event = %T, want *model.ErrorEvent", events[0])
	}
	if errEvent.ErrorCode != model.CodeUnknownMessage {
		t.Errorf("ErrorCode = %q, want %q", errEvent.ErrorCode, model.CodeUnknownMessage)
	}
	if string(errEvent.ReceivedData) != string(raw) {
		t.Errorf("ReceivedData = %s, want original payload", errEvent.ReceivedData)
	}

	if d.Stats().UnknownFrames != 1 {
		t.Errorf("UnknownFrames = %d, want 1", d.Stats().UnknownFrames)
	}
}

func TestDispatcher_PongIsSilent(t *testing.T) {
	d, h := newTestDispatcher(t)

	sent := time.Now().Add(-20 * time.Millisecond).Format(time.RFC3339Nano)
	frame, _ := json.Marshal(map[string]string{
		"type":               "pong",
		"original_timestamp": sent,
	})
	if err := d.Handle("client-1", frame); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if got := len(h.all()); got != 0 {
		t.Errorf("events = %d, want 0 (pong is log-only)", got)
	}
}

func TestDispatcher_CountsReceived(t *testing.T) {
	reg := connection.NewRegistry(connection.DefaultRegistryConfig(), nil)
	h := &fakeHandle{}
	reg.Admit(h, "client-1")
	d := NewDispatcher(reg, notify.NewNotifier(reg, nil), nil)

	frame, _ := json.Marshal(map[string]string{"type": "ping"})
	d.Handle("client-1", frame)
	d.Handle("client-1", []byte("bad"))

	if got := reg.Stats().MessagesReceived; got != 2 {
		t.Errorf("MessagesReceived = %d, want 2", got)
	}
}
