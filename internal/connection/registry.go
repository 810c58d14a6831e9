package connection

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// entry is one registered connection.
type entry struct {
	clientID    string
	handle      Handle
	connectedAt time.Time
}

// Registry owns the mapping from client identifier to live connection
// handles. The primary map holds the one addressable handle per clientID
// (targeted sends); the secondary multi-map tracks every open socket for a
// clientID so a second browser tab does not orphan the first.
type Registry struct {
	cfg    RegistryConfig
	logger *slog.Logger

	mu      sync.RWMutex
	primary map[string]*entry
	all     map[string][]*entry

	// Counters
	total    atomic.Int64 // connections ever admitted
	sent     atomic.Int64
	received atomic.Int64
}

// NewRegistry creates a connection registry.
func NewRegistry(cfg RegistryConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:     cfg,
		logger:  logger,
		primary: make(map[string]*entry),
		all:     make(map[string][]*entry),
	}
}

// Admit registers a connection for clientID. It fails fast with
// ErrCapacityExceeded when the distinct-client count is at the limit; the
// caller must then close the handle without it ever having been registered.
// A re-connection for an already-present clientID replaces the addressable
// handle but keeps earlier sockets in the multi-map.
func (r *Registry) Admit(h Handle, clientID string) error {
	r.mu.Lock()
	if len(r.primary) >= r.cfg.MaxConnections {
		r.mu.Unlock()
		r.logger.Warn("connection refused, capacity exceeded",
			"client_id", clientID,
			"max_connections", r.cfg.MaxConnections,
		)
		return ErrCapacityExceeded
	}

	e := &entry{
		clientID:    clientID,
		handle:      h,
		connectedAt: time.Now(),
	}
	r.all[clientID] = append(r.all[clientID], e)
	r.primary[clientID] = e
	active := len(r.primary)
	r.mu.Unlock()

	r.total.Add(1)

	r.logger.Info("connection admitted",
		"client_id", clientID,
		"active_connections", active,
	)
	return nil
}

// Remove deregisters a connection. Removing an absent connection is a
// no-op, so callers may invoke it from multiple cleanup paths.
func (r *Registry) Remove(h Handle, clientID string) {
	r.mu.Lock()

	sockets := r.all[clientID]
	for i, e := range sockets {
		if e.handle == h {
			r.all[clientID] = append(sockets[:i], sockets[i+1:]...)
			break
		}
	}
	if len(r.all[clientID]) == 0 {
		delete(r.all, clientID)
	}

	removed := false
	if e, ok := r.primary[clientID]; ok && e.handle == h {
		delete(r.primary, clientID)
		removed = true
	}
	active := len(r.primary)
	r.mu.Unlock()

	if removed {
		r.logger.Info("connection removed",
			"client_id", clientID,
			"active_connections", active,
		)
	}
}

// Lookup returns the addressable handle for clientID.
func (r *Registry) Lookup(clientID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.primary[clientID]
	if !ok {
		return nil, false
	}
	return e.handle, true
}

// ActiveCount returns the number of currently addressable clients.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.primary)
}

// Peers returns the addressable (clientID, handle) pairs at this instant.
// The slice is a copy; senders iterate it without holding the registry lock.
func (r *Registry) Peers() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]Peer, 0, len(r.primary))
	for id, e := range r.primary {
		peers = append(peers, Peer{ClientID: id, Handle: e.handle})
	}
	return peers
}

// Snapshot returns diagnostic info for every registered connection.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.primary))
	for id, e := range r.primary {
		infos = append(infos, Info{
			ClientID:    id,
			ConnectedAt: e.connectedAt,
			Active:      true,
		})
	}
	return infos
}

// Stats returns current registry counters.
func (r *Registry) Stats() Stats {
	return Stats{
		TotalConnections: r.total.Load(),
		ActiveCount:      r.ActiveCount(),
		MessagesSent:     r.sent.Load(),
		MessagesReceived: r.received.Load(),
	}
}

// RecordSent increments the messages-sent counter.
func (r *Registry) RecordSent() { r.sent.Add(1) }

// RecordReceived increments the messages-received counter.
func (r *Registry) RecordReceived() { r.received.Add(1) }
