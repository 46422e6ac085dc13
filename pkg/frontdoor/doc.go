// Package frontdoor delivers the progress of one session to one observer.
//
// A Watcher reads events from a Transport and applies them to a View, which
// drops every event whose step index regresses. Transport failures are
// handled by an explicit mode machine:
//
//	Streaming -> Reconnecting -> Polling -> Degraded
//
// Any mode moves to Terminal once a completed or failed event is applied.
// Degraded means progress cannot be observed right now; it never means the
// workflow failed. While degraded the watcher keeps polling and tries a
// direct result fetch.
//
// Transports:
//   - HTTPTransport: websocket stream plus JSON polling against the REST API
//   - LocalTransport: in-process access to the orchestrator
package frontdoor
