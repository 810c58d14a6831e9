package connection

import (
	"errors"
	"time"

	"github.com/reportdash/realtime/internal/model"
)

// Errors
var (
	ErrCapacityExceeded = errors.New("connection capacity exceeded")
	ErrNotConnected     = errors.New("not connected")
)

// Handle is the send side of one live client connection. *Conn implements
// it; tests substitute fakes.
type Handle interface {
	// WriteEvent marshals and sends one outbound event.
	WriteEvent(e model.Event) error

	// Close shuts the underlying transport. Safe to call more than once.
	Close() error
}

// Peer pairs a clientID with its addressable handle at a point in time.
type Peer struct {
	ClientID string
	Handle   Handle
}

// Info describes one registered connection for diagnostics.
type Info struct {
	ClientID    string    `json:"client_id"`
	ConnectedAt time.Time `json:"connected_at"`
	Active      bool      `json:"active"`
}

// Stats holds registry counters.
type Stats struct {
	TotalConnections int64 `json:"total_connections"`
	ActiveCount      int   `json:"active_count"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
}

// RegistryConfig configures the connection registry.
type RegistryConfig struct {
	MaxConnections int // Admission limit on distinct clientIDs
}

// DefaultRegistryConfig returns sensible defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MaxConnections: 100,
	}
}
