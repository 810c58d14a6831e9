package notify

import (
	"log/slog"
	"time"

	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/model"
)

// Notifier is the send surface built on the connection registry. It never
// fails loudly: an unreachable client yields delivered=false and the caller
// decides whether that matters.
type Notifier struct {
	reg    *connection.Registry
	logger *slog.Logger
}

// NewNotifier creates a Notifier over the given registry.
func NewNotifier(reg *connection.Registry, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		reg:    reg,
		logger: logger,
	}
}

// SendTo delivers one event to one client. It returns false, not an error,
// when the client is not connected: progress pushes tolerate absent owners
// because polling remains available. A send failure reaps the connection.
func (n *Notifier) SendTo(clientID string, e model.Event) bool {
	h, ok := n.reg.Lookup(clientID)
	if !ok {
		return false
	}

	e.StampIfEmpty(time.Now())

	if err := h.WriteEvent(e); err != nil {
		n.logger.Warn("send failed, removing connection",
			"client_id", clientID,
			"event_type", e.Kind(),
			"error", err,
		)
		n.reg.Remove(h, clientID)
		return false
	}

	n.reg.RecordSent()
	return true
}

// Broadcast delivers one event to every connected client except
// excludeClientID (empty string excludes no one). Failed peers are logged
// and reaped; delivery continues to the rest. Returns the delivered count.
func (n *Notifier) Broadcast(e model.Event, excludeClientID string) int {
	e.StampIfEmpty(time.Now())

	sent := 0
	for _, p := range n.reg.Peers() {
		if p.ClientID == excludeClientID {
			continue
		}
		if err := p.Handle.WriteEvent(e); err != nil {
			n.logger.Warn("broadcast send failed, removing connection",
				"client_id", p.ClientID,
				"error", err,
			)
			n.reg.Remove(p.Handle, p.ClientID)
			continue
		}
		n.reg.RecordSent()
		sent++
	}

	n.logger.Debug("broadcast complete",
		"event_type", e.Kind(),
		"sent", sent,
		"excluded", excludeClientID,
	)
	return sent
}

// PingAll broadcasts a liveness ping carrying the active-connection count.
func (n *Notifier) PingAll() int {
	return n.Broadcast(model.NewPingEvent(time.Now(), n.reg.ActiveCount()), "")
}
