// Package connection implements the Connection Registry component.
//
// The Connection Registry:
//   - Owns the clientID → live connection mapping (one addressable handle
//     per clientID, plus a multi-map of all open sockets for multi-tab use)
//   - Enforces the admission limit (fail fast, never block on capacity)
//   - Is the only component allowed to add or remove entries
//   - Tracks connections-ever, active-count, and message counters
//
// Conn is the server-side websocket handle: one writer at a time, a
// deadline per write, close-once semantics.
package connection
