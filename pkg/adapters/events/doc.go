// Package events provides progress event sink implementations. Sinks receive
// a copy of every progress event and keep a per-session history.
//
// Implementations:
//   - redis: Redis Streams, one capped stream per session
//   - memory: In-memory, bounded number of sessions
package events
