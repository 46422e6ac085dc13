// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Debate and business idea session creation
//   - Session snapshots, progress polling, results and cancellation
//   - Server-sent event streams and recorded event history
//   - Provider listing
//   - Health checks
//   - Prometheus metrics
//
// Errors use a single envelope:
//
//	{"error": {"code": "NOT_FOUND", "message": "session not found"}}
package http
