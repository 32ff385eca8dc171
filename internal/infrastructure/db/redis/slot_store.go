package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

const defaultKeyPrefix = "portal:session:"

// SlotStore keeps session slots as plain Redis strings.
// Key format: <prefix><slot>
type SlotStore struct {
	client *redis.Client
	prefix string
}

var _ ports.SlotStorage = (*SlotStore)(nil)

// NewSlotStore creates a SlotStore wrapping the given Redis client. An empty
// prefix selects the default.
func NewSlotStore(client *redis.Client, prefix string) *SlotStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SlotStore{client: client, prefix: prefix}
}

func (s *SlotStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SlotStore) key(slot string) string {
	return s.prefix + slot
}
