package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/model"
	"github.com/reportdash/realtime/internal/notify"
)

// Dispatcher routes inbound client frames. It is stateless beyond registry
// counters; replies go out through the Notifier.
type Dispatcher struct {
	reg      *connection.Registry
	notifier *notify.Notifier
	logger   *slog.Logger

	// Stats
	parseErrors   atomic.Int64
	unknownFrames atomic.Int64
}

// Stats contains dispatcher counters.
type Stats struct {
	ParseErrors   int64 `json:"parse_errors"`
	UnknownFrames int64 `json:"unknown_frames"`
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(reg *connection.Registry, notifier *notify.Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		reg:      reg,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle processes one inbound frame from clientID. Every failure is
// contained here: parse errors and panics become a single error event to
// the sender, and the returned error is informational only — callers keep
// the connection open either way.
func (d *Dispatcher) Handle(clientID string, raw []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("message handling panicked",
				"client_id", clientID,
				"panic", r,
			)
			d.notifier.SendTo(clientID, model.NewErrorEvent(
				"message processing failed", model.CodeProcessingFailure, nil))
			err = fmt.Errorf("dispatch panic: %v", r)
		}
	}()

	d.reg.RecordReceived()

	var frame model.InboundFrame
	if jsonErr := json.Unmarshal(raw, &frame); jsonErr != nil {
		d.parseErrors.Add(1)
		d.logger.Warn("unparseable frame",
			"client_id", clientID,
			"error", jsonErr,
		)
		d.notifier.SendTo(clientID, model.NewErrorEvent(
			"invalid JSON payload", model.CodeInvalidJSON, nil))
		return nil
	}

	switch frame.Type {
	case model.FramePing:
		d.handlePing(clientID, frame)
	case model.FramePong:
		d.handlePong(clientID, frame)
	case model.FrameSubscribe:
		d.handleSubscription(clientID, frame, "subscribed")
	case model.FrameUnsubscribe:
		d.handleSubscription(clientID, frame, "unsubscribed")
	case model.FrameEcho:
		d.handleEcho(clientID, raw)
	default:
		d.handleUnknown(clientID, frame, raw)
	}
	return nil
}

// Stats returns current dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		ParseErrors:   d.parseErrors.Load(),
		UnknownFrames: d.unknownFrames.Load(),
	}
}

// handlePing replies with a pong echoing the client's timestamp.
func (d *Dispatcher) handlePing(clientID string, frame model.InboundFrame) {
	d.notifier.SendTo(clientID, model.NewPongEvent(frame.Timestamp, time.Now()))
}

// handlePong computes round-trip latency from the echoed timestamp. Log
// only; no reply.
func (d *Dispatcher) handlePong(clientID string, frame model.InboundFrame) {
	if frame.OriginalTimestamp == "" {
		return
	}
	sentAt, err := time.Parse(time.RFC3339Nano, frame.OriginalTimestamp)
	if err != nil {
		return
	}
	d.logger.Info("client latency",
		"client_id", clientID,
		"latency_ms", time.Since(sentAt).Milliseconds(),
	)
}

// handleSubscription acknowledges a subscribe/unsubscribe request.
// Bookkeeping is advisory only: broadcasts are not filtered by topic.
func (d *Dispatcher) handleSubscription(clientID string, frame model.InboundFrame, status string) {
	d.notifier.SendTo(clientID, model.NewSubscriptionEvent(
		frame.EventType,
		status,
		fmt.Sprintf("%s %s events", status, frame.EventType),
	))
}

// handleEcho wraps the raw original frame in an echo event.
func (d *Dispatcher) handleEcho(clientID string, raw []byte) {
	d.notifier.SendTo(clientID, model.NewEchoEvent(raw, time.Now()))
}

// handleUnknown replies with an error event carrying the original payload
// for debuggability.
func (d *Dispatcher) handleUnknown(clientID string, frame model.InboundFrame, raw []byte) {
	d.unknownFrames.Add(1)
	d.logger.Debug("unknown frame type",
		"client_id", clientID,
		"type", frame.Type,
	)
	d.notifier.SendTo(clientID, model.NewErrorEvent(
		fmt.Sprintf("unknown message type: %s", frame.Type),
		model.CodeUnknownMessage,
		raw,
	))
}
