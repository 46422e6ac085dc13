package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamsEventSink implements EventSink using Redis Streams. Each session
// gets its own stream, capped at maxLen entries and expiring after ttl.
type StreamsEventSink struct {
	client *redis.Client
	logger *zap.Logger
	maxLen int64
	ttl    time.Duration
}

// NewStreamsEventSink creates a new Redis Streams event sink
func NewStreamsEventSink(client *redis.Client, maxLen int64, ttl time.Duration, logger *zap.Logger) *StreamsEventSink {
	return &StreamsEventSink{
		client: client,
		logger: logger,
		maxLen: maxLen,
		ttl:    ttl,
	}
}

// Publish appends an event to the session stream (ports.EventSink interface)
func (e *StreamsEventSink) Publish(ctx context.Context, event domain.ProgressEvent) error {
	streamKey := getStreamKey(event.SessionID)

	// Serialize event
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Add to stream and refresh expiry in one round trip
	pipe := e.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: e.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	})
	if e.ttl > 0 {
		pipe.Expire(ctx, streamKey, e.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("session_id", event.SessionID),
		zap.Int("step_index", event.StepIndex),
		zap.String("stream", streamKey))

	return nil
}

// History reads the whole session stream (ports.EventHistory interface)
func (e *StreamsEventSink) History(ctx context.Context, sessionID string) ([]domain.ProgressEvent, error) {
	streamKey := getStreamKey(sessionID)

	messages, err := e.client.XRange(ctx, streamKey, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	if len(messages) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	events := make([]domain.ProgressEvent, 0, len(messages))
	for _, message := range messages {
		event, ok := e.decode(streamKey, message)
		if ok {
			events = append(events, event)
		}
	}
	return events, nil
}

// decode extracts the event of a single stream message
func (e *StreamsEventSink) decode(streamKey string, message redis.XMessage) (domain.ProgressEvent, bool) {
	data, ok := message.Values["data"].(string)
	if !ok {
		e.logger.Error("invalid message format",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID))
		return domain.ProgressEvent{}, false
	}

	var event domain.ProgressEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		e.logger.Error("failed to unmarshal event",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return domain.ProgressEvent{}, false
	}
	return event, true
}

// Close releases nothing; the Redis client is closed by the caller
func (e *StreamsEventSink) Close() error {
	return nil
}

// getStreamKey returns the Redis stream key for a session
func getStreamKey(sessionID string) string {
	return fmt.Sprintf("debatehub:events:%s", sessionID)
}
