// Package model defines shared data types used across the realtime core.
//
// Conventions:
//   - Wire timestamps: RFC 3339 strings (what dashboard clients expect)
//   - Internal timestamps: time.Time
//   - IDs: uuid strings for batches, opaque strings for clients and reports
//
// Outbound websocket events form a closed set: one struct per wire "type",
// each embedding Meta for the tag and timestamp. Inbound frames decode into
// InboundFrame, which carries only the fields the dispatcher routes on.
package model
