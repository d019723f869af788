package redis

// Package redis provides Redis-based storage adapters for the FlowState client.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// DefaultKeyPrefix namespaces client state hashes.
const DefaultKeyPrefix = "flowstate:client:"

// Ensure compile-time conformance to ports.
var (
	_ ports.Storage         = (*ClientStore)(nil)
	_ ports.StorageProvider = (*Provider)(nil)
)

// Provider hands out per-client ClientStores backed by one Redis connection.
type Provider struct {
	client redis.UniversalClient
	prefix string
}

// NewProvider creates a Provider. An empty prefix uses DefaultKeyPrefix.
func NewProvider(client redis.UniversalClient, prefix string) *Provider {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Provider{client: client, prefix: prefix}
}

// Namespace returns the store for one client.
func (p *Provider) Namespace(id string) ports.Storage {
	return &ClientStore{client: p.client, key: p.prefix + id}
}

// ClientStore keeps one client's state in a single Redis hash.
// The TTL applies to the whole hash and is refreshed on every Set with a positive ttl.
type ClientStore struct {
	client redis.UniversalClient
	key    string
}

// NewClientStore creates a store bound to an explicit hash key.
func NewClientStore(client redis.UniversalClient, key string) *ClientStore {
	return &ClientStore{client: client, key: key}
}

func (s *ClientStore) Get(ctx context.Context, field string) (string, bool, error) {
	if field == "" {
		return "", false, nil
	}

	val, err := s.client.HGet(ctx, s.key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return val, true, nil
}

func (s *ClientStore) Set(ctx context.Context, field, value string, ttl time.Duration) error {
	if field == "" {
		return errors.New("storage key cannot be empty")
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, field, value)
		if ttl > 0 {
			pipe.Expire(ctx, s.key, ttl)
		} else {
			pipe.Persist(ctx, s.key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *ClientStore) Delete(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil // Nothing to delete
	}
	if err := s.client.HDel(ctx, s.key, fields...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
