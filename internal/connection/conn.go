package connection

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reportdash/realtime/internal/model"
)

// Conn wraps a server-side websocket connection with the discipline a
// shared handle needs: writes are serialized and carry a deadline, close
// happens at most once.
type Conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	// Write serialization
	writeMu sync.Mutex

	// State
	mu     sync.RWMutex
	closed bool
}

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		ws:           ws,
		writeTimeout: writeTimeout,
	}
}

// WriteEvent marshals and sends one outbound event.
func (c *Conn) WriteEvent(e model.Event) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteJSON(e)
}

// ReadMessage blocks until the next frame arrives from the peer.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// SetReadLimit bounds the size of frames accepted from the peer.
func (c *Conn) SetReadLimit(limit int64) {
	c.ws.SetReadLimit(limit)
}

// Close gracefully closes the connection. Calling Close on an already
// closed connection is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// Best-effort close frame so well-behaved peers see a normal closure.
	c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.ws.Close()
}
