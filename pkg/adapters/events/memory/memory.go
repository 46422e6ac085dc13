package memory

import (
	"context"
	"sync"

	"github.com/aescanero/debatehub/pkg/domain"
)

// DefaultMaxSessions bounds the number of sessions kept by the sink
const DefaultMaxSessions = 1024

// InMemoryEventSink implements EventSink and EventHistory in memory. Once
// maxSessions sessions are recorded the oldest session's history is dropped.
type InMemoryEventSink struct {
	events      map[string][]domain.ProgressEvent
	order       []string
	maxSessions int
	mu          sync.RWMutex
}

// NewInMemoryEventSink creates a new in-memory event sink
func NewInMemoryEventSink(maxSessions int) *InMemoryEventSink {
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	return &InMemoryEventSink{
		events:      make(map[string][]domain.ProgressEvent),
		maxSessions: maxSessions,
	}
}

// Publish records an event (ports.EventSink interface)
func (e *InMemoryEventSink) Publish(ctx context.Context, event domain.ProgressEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.events[event.SessionID]; !ok {
		e.order = append(e.order, event.SessionID)
		if len(e.order) > e.maxSessions {
			delete(e.events, e.order[0])
			e.order = e.order[1:]
		}
	}
	e.events[event.SessionID] = append(e.events[event.SessionID], event)
	return nil
}

// History returns the recorded events of a session (ports.EventHistory interface)
func (e *InMemoryEventSink) History(ctx context.Context, sessionID string) ([]domain.ProgressEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	events, ok := e.events[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.ProgressEvent, len(events))
	copy(out, events)
	return out, nil
}

// Close clears all recorded events
func (e *InMemoryEventSink) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = make(map[string][]domain.ProgressEvent)
	e.order = nil
	return nil
}
