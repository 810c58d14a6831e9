// Package dispatch implements the inbound message Dispatcher.
//
// The Dispatcher:
//   - Parses each inbound frame and routes it by type
//   - Answers ping/echo/subscribe/unsubscribe, logs pong latency
//   - Replies with a single error event on malformed or unknown frames
//   - Contains every failure at the per-message boundary so one bad frame
//     never costs the client its connection
package dispatch
