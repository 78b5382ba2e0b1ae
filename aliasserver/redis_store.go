package aliasserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces alias keys in Redis.
const DefaultRedisKeyPrefix = "alias:"

// RedisStore is a Store backed by Redis. Expiry uses Redis native TTLs, so
// multiple service instances sharing one Redis share the alias space and its
// expiry semantics for free.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKeyPrefix overrides the key prefix.
//
// Default: "alias:"
func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a Store on top of the given Redis client.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: DefaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Put stores rec as JSON under its ID. A ttl of zero stores without expiry.
func (s *RedisStore) Put(ctx context.Context, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode alias %s: %w", rec.ID, err)
	}

	if err := s.rdb.Set(ctx, s.key(rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store alias %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record for id. A key evicted by its TTL is a miss.
func (s *RedisStore) Get(ctx context.Context, id string) (Record, bool, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load alias %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode alias %s: %w", id, err)
	}
	return rec, true, nil
}

// Delete removes the record for id. Deleting an unknown id is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete alias %s: %w", id, err)
	}
	return nil
}
