// Package notify implements the Notifier and the maintenance loop.
//
// The Notifier:
//   - Sends one event to one client (SendTo) or to everyone (Broadcast)
//   - Attaches a timestamp when the event has none
//   - Reaps connections whose sends fail; a failure to one peer never
//     aborts delivery to the rest
//
// The maintenance loop runs a stale-connection sweep and a liveness ping
// on a fixed interval, with a shortened backoff after a failed iteration
// so the loop never silently dies.
package notify
