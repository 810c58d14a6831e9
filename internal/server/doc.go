// Package server exposes the HTTP and websocket surface of the realtime
// service.
//
// Routes:
//   - GET  /ws/{client_id}                        websocket session
//   - POST /api/reports/batch/generate            start a batch job
//   - GET  /api/reports/batch/{batch_id}/status   poll a batch job
//   - GET  /api/ws/stats                          connection statistics
//   - GET  /health                                component health
package server
