package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"unigang/annex/internal/cache"
)

// Store is the persistent key/value storage of one namespace per client.
// Writes spanning several keys are not atomic as a group.
type Store interface {
	Load(ctx context.Context, client string) (map[string]string, error)
	Set(ctx context.Context, client string, values map[string]string) error
	Remove(ctx context.Context, client string, keys ...string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, client string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.data[client]))
	for k, v := range s.data[client] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, client string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[client]
	if !ok {
		ns = make(map[string]string, len(values))
		s.data[client] = ns
	}
	for k, v := range values {
		ns[k] = v
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, client string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.data[client]
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(s.data, client)
	}
	return nil
}

// RedisStore keeps each client namespace in one hash.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(client string) string {
	return cache.Key(s.prefix, "session", client)
}

func (s *RedisStore) Load(ctx context.Context, client string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.key(client)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return values, nil
}

func (s *RedisStore) Set(ctx context.Context, client string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	if err := s.client.HSet(ctx, s.key(client), pairs...).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, client string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(client), keys...).Err(); err != nil {
		return fmt.Errorf("remove session keys: %w", err)
	}
	return nil
}
