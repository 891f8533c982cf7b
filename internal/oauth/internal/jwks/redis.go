package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces key-set entries in a shared Redis.
const DefaultRedisKeyPrefix = "mcp:jwks:"

// RedisStore is an EntryStore backed by Redis so replicas of the resource
// server share one view of the key set and its validators.
//
// Keys are stored without a Redis TTL. Staleness is decided by
// Entry.ExpiresAt so stale entries remain available for revalidation.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a store using client. An empty keyPrefix selects
// DefaultRedisKeyPrefix.
func NewRedisStore(client redis.UniversalClient, keyPrefix string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

// Load implements EntryStore.
func (s *RedisStore) Load(ctx context.Context, uri string) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+uri).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode entry for %s: %w", uri, err)
	}
	return &entry, nil
}

// Store implements EntryStore.
func (s *RedisStore) Store(ctx context.Context, uri string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %s: %w", uri, err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+uri, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", uri, err)
	}
	return nil
}
