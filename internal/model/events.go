package model

import (
	"encoding/json"
	"time"
)

// EventKind is the wire "type" tag of an outbound event.
type EventKind string

const (
	EventConnection    EventKind = "connection"
	EventPing          EventKind = "ping"
	EventPong          EventKind = "pong"
	EventSubscription  EventKind = "subscription"
	EventEcho          EventKind = "echo"
	EventBatchProgress EventKind = "batch_report_progress"
	EventError         EventKind = "error"
)

// Inbound frame types accepted from clients.
const (
	FramePing        = "ping"
	FramePong        = "pong"
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameEcho        = "echo"
)

// Error codes carried by error events.
const (
	CodeConnectionLimit   = "CONNECTION_LIMIT_EXCEEDED"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeUnknownMessage    = "UNKNOWN_MESSAGE_TYPE"
	CodeProcessingFailure = "MESSAGE_PROCESSING_ERROR"
)

// Event is implemented by every outbound websocket event.
type Event interface {
	Kind() EventKind

	// StampIfEmpty sets the event timestamp unless one is already present.
	StampIfEmpty(t time.Time)
}

// Meta carries the type tag and timestamp common to all outbound events.
// Embed it as the first field so "type" marshals first.
type Meta struct {
	Type      EventKind `json:"type"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Kind returns the wire type tag.
func (m *Meta) Kind() EventKind { return m.Type }

// StampIfEmpty sets the timestamp unless one is already present.
func (m *Meta) StampIfEmpty(t time.Time) {
	if m.Timestamp == "" {
		m.Timestamp = t.Format(time.RFC3339Nano)
	}
}

// ConnectionEvent is a lifecycle notice: a client connected or disconnected.
type ConnectionEvent struct {
	Meta
	Status            string `json:"status"` // "connected" or "disconnected"
	ClientID          string `json:"client_id"`
	Message           string `json:"message"`
	ActiveConnections int    `json:"active_connections"`
}

// NewConnectionEvent builds a connection lifecycle notice.
func NewConnectionEvent(status, clientID, message string, active int) *ConnectionEvent {
	return &ConnectionEvent{
		Meta:              Meta{Type: EventConnection},
		Status:            status,
		ClientID:          clientID,
		Message:           message,
		ActiveConnections: active,
	}
}

// PingEvent is a server-initiated liveness ping carrying the current
// active-connection count so clients can self-diagnose reconnection needs.
type PingEvent struct {
	Meta
	ServerTime        string `json:"server_time"`
	ActiveConnections int    `json:"active_connections"`
}

// NewPingEvent builds a server liveness ping.
func NewPingEvent(now time.Time, active int) *PingEvent {
	return &PingEvent{
		Meta:              Meta{Type: EventPing},
		ServerTime:        now.Format(time.RFC3339Nano),
		ActiveConnections: active,
	}
}

// PongEvent replies to a client ping, echoing the client's timestamp.
type PongEvent struct {
	Meta
	OriginalTimestamp string `json:"original_timestamp,omitempty"`
	ServerTimestamp   string `json:"server_timestamp"`
}

// NewPongEvent builds a pong reply. originalTS may be empty if the client
// ping carried no timestamp.
func NewPongEvent(originalTS string, now time.Time) *PongEvent {
	return &PongEvent{
		Meta:              Meta{Type: EventPong},
		OriginalTimestamp: originalTS,
		ServerTimestamp:   now.Format(time.RFC3339Nano),
	}
}

// SubscriptionEvent acknowledges a subscribe/unsubscribe request.
// Subscription state is advisory only: broadcasts are not filtered by topic.
type SubscriptionEvent struct {
	Meta
	EventType string `json:"event_type"`
	Status    string `json:"status"` // "subscribed" or "unsubscribed"
	Message   string `json:"message"`
}

// NewSubscriptionEvent builds a subscription acknowledgement.
func NewSubscriptionEvent(eventType, status, message string) *SubscriptionEvent {
	return &SubscriptionEvent{
		Meta:      Meta{Type: EventSubscription},
		EventType: eventType,
		Status:    status,
		Message:   message,
	}
}

// EchoEvent wraps a client's original frame back to it.
type EchoEvent struct {
	Meta
	OriginalMessage json.RawMessage `json:"original_message"`
	ServerTimestamp string          `json:"server_timestamp"`
}

// NewEchoEvent builds an echo reply carrying the raw original frame.
func NewEchoEvent(original []byte, now time.Time) *EchoEvent {
	return &EchoEvent{
		Meta:            Meta{Type: EventEcho},
		OriginalMessage: json.RawMessage(original),
		ServerTimestamp: now.Format(time.RFC3339Nano),
	}
}

// BatchProgressEvent reports batch job progress to the owning client.
// Progress counts items with a recorded outcome; Completed and Failed carry
// the running counters and, on the terminal event, the final tallies.
type BatchProgressEvent struct {
	Meta
	BatchID       string      `json:"batch_id"`
	Status        BatchStatus `json:"status"`
	Message       string      `json:"message"`
	Progress      int         `json:"progress"`
	Total         int         `json:"total"`
	CurrentReport string      `json:"current_report,omitempty"`
	Completed     int         `json:"completed"`
	Failed        int         `json:"failed"`
}

// NewBatchProgressEvent builds a batch progress notification.
func NewBatchProgressEvent(batchID string, status BatchStatus, message string, progress, total int) *BatchProgressEvent {
	return &BatchProgressEvent{
		Meta:     Meta{Type: EventBatchProgress},
		BatchID:  batchID,
		Status:   status,
		Message:  message,
		Progress: progress,
		Total:    total,
	}
}

// ErrorEvent reports a per-message failure back to the sending client.
type ErrorEvent struct {
	Meta
	Message      string          `json:"message"`
	ErrorCode    string          `json:"error_code"`
	ReceivedData json.RawMessage `json:"received_data,omitempty"`
}

// NewErrorEvent builds an error event. received may be nil when the
// offending frame is not worth echoing back.
func NewErrorEvent(message, code string, received []byte) *ErrorEvent {
	return &ErrorEvent{
		Meta:         Meta{Type: EventError},
		Message:      message,
		ErrorCode:    code,
		ReceivedData: json.RawMessage(received),
	}
}

// InboundFrame is the decoded shape of a client frame. Only the fields the
// dispatcher routes on are decoded; the raw bytes travel alongside for
// echo and unknown-type replies.
type InboundFrame struct {
	Type              string `json:"type"`
	Timestamp         string `json:"timestamp,omitempty"`
	OriginalTimestamp string `json:"original_timestamp,omitempty"`
	EventType         string `json:"event_type,omitempty"`
}
