package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"partyquiz/models"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore stores each snapshot as one JSON value under
// "session:<pin>" with a rolling TTL, so abandoned games expire on their own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(pin string) string {
	return "session:" + pin
}

func (s *RedisSessionStore) Load(ctx context.Context, pin string) (*models.SessionState, error) {
	data, err := s.client.Get(ctx, sessionKey(pin)).Result()
	if err == redis.Nil {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", pin, err)
	}

	var state models.SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", pin, err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state *models.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", state.Pin, err)
	}
	if err := s.client.Set(ctx, sessionKey(state.Pin), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", state.Pin, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, pin string) error {
	return s.client.Del(ctx, sessionKey(pin)).Err()
}
