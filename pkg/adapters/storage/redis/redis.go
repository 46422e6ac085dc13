package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultStorage implements ResultStore using Redis
type ResultStorage struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewResultStorage creates a new Redis result storage
func NewResultStorage(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultStorage {
	return &ResultStorage{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// SaveResult persists a terminal result (ports.ResultStore interface)
func (s *ResultStorage) SaveResult(ctx context.Context, result *domain.Result) error {
	key := getResultKey(result.SessionID)

	// Serialize result
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	// Save to Redis with TTL
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Debug("result saved",
		zap.String("session_id", result.SessionID),
		zap.String("outcome", string(result.Outcome)))

	return nil
}

// LoadResult retrieves a result (ports.ResultStore interface)
func (s *ResultStorage) LoadResult(ctx context.Context, sessionID string) (*domain.Result, error) {
	key := getResultKey(sessionID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// DeleteResult removes a result (ports.ResultStore interface)
func (s *ResultStorage) DeleteResult(ctx context.Context, sessionID string) error {
	key := getResultKey(sessionID)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	s.logger.Debug("result deleted",
		zap.String("session_id", sessionID))

	return nil
}

// getResultKey returns the Redis key for a session result
func getResultKey(sessionID string) string {
	return fmt.Sprintf("debatehub:result:%s", sessionID)
}
