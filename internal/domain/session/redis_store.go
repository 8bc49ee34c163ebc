// internal/domain/session/redis_store.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session in a Redis hash with a sliding expiration
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a session store backed by Redis
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Get returns the value of a field and whether it is present
func (s *RedisStore) Get(ctx context.Context, sessionID, field string) (string, bool, error) {
	value, err := s.client.HGet(ctx, sessionKey(sessionID), field).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read session field %s: %w", field, err)
	}
	return value, true, nil
}

// Set stores a field value and refreshes the session expiration
func (s *RedisStore) Set(ctx context.Context, sessionID, field, value string) error {
	key := sessionKey(sessionID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session field %s: %w", field, err)
	}
	return nil
}

// Delete removes individual fields from the session
func (s *RedisStore) Delete(ctx context.Context, sessionID string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, sessionKey(sessionID), fields...).Err(); err != nil {
		return fmt.Errorf("failed to delete session fields: %w", err)
	}
	return nil
}

// Clear removes the entire session
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
