package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.uber.org/zap"
)

// DefaultBufferSize is the per-subscriber queue length
const DefaultBufferSize = 16

const (
	// sinkQueueSize bounds the events waiting to be forwarded to the sink
	sinkQueueSize = 256
	// sinkTimeout bounds one forwarded publish
	sinkTimeout = 2 * time.Second
)

// Hub fans progress events out to the subscribers of each session. It keeps
// the latest event per session so late subscribers and pollers never start
// from zero.
type Hub struct {
	topics     sync.Map // map[string]*topic
	bufferSize int
	sink       ports.EventSink
	metrics    ports.MetricsCollector
	logger     *zap.Logger

	nextID      atomic.Uint64
	subscribers atomic.Int64

	// forwarding to the sink happens on one goroutine so publishers never
	// wait on it
	sinkMu     sync.RWMutex
	sinkQueue  chan domain.ProgressEvent
	sinkClosed bool
	sinkDone   chan struct{}
}

// topic holds the state of one session
type topic struct {
	mu           sync.Mutex
	latest       domain.ProgressEvent
	hasLatest    bool
	subs         map[uint64]*Subscription
	terminal     bool
	lastObserved time.Time
}

// Subscription is one push subscriber of a session
type Subscription struct {
	id        uint64
	sessionID string
	ch        chan domain.ProgressEvent
	hub       *Hub
	once      sync.Once
}

// C returns the event channel. It is closed after the terminal event or on Close.
func (s *Subscription) C() <-chan domain.ProgressEvent {
	return s.ch
}

// Close detaches the subscription
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// NewHub creates a new progress hub. sink may be nil.
func NewHub(bufferSize int, sink ports.EventSink, metrics ports.MetricsCollector, logger *zap.Logger) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	h := &Hub{
		bufferSize: bufferSize,
		sink:       sink,
		metrics:    metrics,
		logger:     logger,
		sinkDone:   make(chan struct{}),
	}
	if sink == nil {
		close(h.sinkDone)
		return h
	}
	h.sinkQueue = make(chan domain.ProgressEvent, sinkQueueSize)
	go h.drainSink()
	return h
}

// Close stops forwarding and waits until queued events reach the sink.
// Events published afterwards still reach subscribers and pollers.
func (h *Hub) Close(ctx context.Context) error {
	h.sinkMu.Lock()
	if !h.sinkClosed && h.sinkQueue != nil {
		close(h.sinkQueue)
	}
	h.sinkClosed = true
	h.sinkMu.Unlock()

	select {
	case <-h.sinkDone:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to drain event sink queue: %w", ctx.Err())
	}
}

// Open registers a session so it can be subscribed and polled
func (h *Hub) Open(sessionID string) {
	h.topics.LoadOrStore(sessionID, &topic{
		subs:         make(map[uint64]*Subscription),
		lastObserved: time.Now(),
	})
}

// Publish stores event as the session's latest snapshot and forwards it to
// every attached subscriber. It never blocks on a slow subscriber: a full
// queue drops its oldest event.
func (h *Hub) Publish(event domain.ProgressEvent) {
	val, ok := h.topics.Load(event.SessionID)
	if !ok {
		h.logger.Warn("publish for unknown session",
			zap.String("session_id", event.SessionID))
		return
	}
	t := val.(*topic)

	t.mu.Lock()
	if t.terminal {
		t.mu.Unlock()
		h.logger.Warn("publish after terminal event ignored",
			zap.String("session_id", event.SessionID),
			zap.Int("step_index", event.StepIndex))
		return
	}
	t.latest = event
	t.hasLatest = true
	for _, sub := range t.subs {
		h.deliver(sub, event)
	}
	if event.Terminal() {
		t.terminal = true
		for id, sub := range t.subs {
			delete(t.subs, id)
			sub.once.Do(func() { close(sub.ch) })
			h.subscribers.Add(-1)
		}
	}
	t.mu.Unlock()

	h.metrics.SetSubscribers(int(h.subscribers.Load()))
	h.forward(event)
}

// deliver enqueues event, dropping the oldest queued event when full.
// Must be called with the topic lock held.
func (h *Hub) deliver(sub *Subscription, event domain.ProgressEvent) {
	select {
	case sub.ch <- event:
		return
	default:
	}

	select {
	case <-sub.ch:
		h.metrics.RecordEventDropped()
		h.logger.Debug("subscriber queue full, dropped oldest event",
			zap.String("session_id", sub.sessionID),
			zap.Uint64("subscriber", sub.id))
	default:
	}

	select {
	case sub.ch <- event:
	default:
		h.metrics.RecordEventDropped()
	}
}

// forward queues the event for the sink. A full queue drops the event.
func (h *Hub) forward(event domain.ProgressEvent) {
	h.sinkMu.RLock()
	defer h.sinkMu.RUnlock()
	if h.sinkQueue == nil || h.sinkClosed {
		return
	}

	select {
	case h.sinkQueue <- event:
	default:
		h.metrics.RecordEventDropped()
		h.logger.Warn("event sink queue full, dropped event",
			zap.String("session_id", event.SessionID),
			zap.Int("step_index", event.StepIndex))
	}
}

func (h *Hub) drainSink() {
	defer close(h.sinkDone)

	for event := range h.sinkQueue {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := h.sink.Publish(ctx, event); err != nil {
			h.logger.Error("failed to forward progress event",
				zap.String("session_id", event.SessionID),
				zap.Int("step_index", event.StepIndex),
				zap.Error(err))
		}
		cancel()
	}
}

// Subscribe attaches a push subscriber. The latest known event is replayed
// first; for a terminal session the channel closes right after the replay.
func (h *Hub) Subscribe(sessionID string) (*Subscription, error) {
	val, ok := h.topics.Load(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	t := val.(*topic)

	sub := &Subscription{
		id:        h.nextID.Add(1),
		sessionID: sessionID,
		ch:        make(chan domain.ProgressEvent, h.bufferSize),
		hub:       h,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastObserved = time.Now()
	if t.hasLatest {
		sub.ch <- t.latest
	}
	if t.terminal {
		sub.once.Do(func() { close(sub.ch) })
		return sub, nil
	}
	t.subs[sub.id] = sub
	h.metrics.SetSubscribers(int(h.subscribers.Add(1)))

	return sub, nil
}

func (h *Hub) unsubscribe(sub *Subscription) {
	val, ok := h.topics.Load(sub.sessionID)
	if !ok {
		sub.once.Do(func() { close(sub.ch) })
		return
	}
	t := val.(*topic)

	t.mu.Lock()
	if _, ok := t.subs[sub.id]; ok {
		delete(t.subs, sub.id)
		h.subscribers.Add(-1)
		t.lastObserved = time.Now()
	}
	sub.once.Do(func() { close(sub.ch) })
	t.mu.Unlock()

	h.metrics.SetSubscribers(int(h.subscribers.Load()))
}

// Poll returns the latest event of a session. It has no side effect on
// delivery state; it only refreshes the observation timestamp.
func (h *Hub) Poll(sessionID string) (domain.ProgressEvent, error) {
	val, ok := h.topics.Load(sessionID)
	if !ok {
		return domain.ProgressEvent{}, domain.ErrSessionNotFound
	}
	t := val.(*topic)
	h.metrics.RecordPoll()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastObserved = time.Now()
	if !t.hasLatest {
		return domain.InitialEvent(sessionID), nil
	}
	return t.latest, nil
}

// Observed reports whether the session has an attached subscriber or was
// polled or subscribed within window
func (h *Hub) Observed(sessionID string, window time.Duration) bool {
	val, ok := h.topics.Load(sessionID)
	if !ok {
		return false
	}
	t := val.(*topic)

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.subs) > 0 {
		return true
	}
	return time.Since(t.lastObserved) <= window
}

// SubscriberCount returns the number of attached subscribers of a session
func (h *Hub) SubscriberCount(sessionID string) int {
	val, ok := h.topics.Load(sessionID)
	if !ok {
		return 0
	}
	t := val.(*topic)

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Remove drops a session, closing any remaining subscriber
func (h *Hub) Remove(sessionID string) {
	val, ok := h.topics.LoadAndDelete(sessionID)
	if !ok {
		return
	}
	t := val.(*topic)

	t.mu.Lock()
	for id, sub := range t.subs {
		delete(t.subs, id)
		sub.once.Do(func() { close(sub.ch) })
		h.subscribers.Add(-1)
	}
	t.mu.Unlock()

	h.metrics.SetSubscribers(int(h.subscribers.Load()))
}
