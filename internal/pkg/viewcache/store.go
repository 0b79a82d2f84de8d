package viewcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds rendered view payloads. Entries are grouped under their view
// path so one Drop discards every variant (query) of a view.
//
// Every path carries a generation that Drop advances. Set only writes when the
// generation still matches the one read before the value was loaded, so a
// load that raced an invalidation never puts its stale result back.
type Store interface {
	Get(ctx context.Context, path, key string) ([]byte, bool, error)
	Generation(ctx context.Context, path string) (int64, error)
	Set(ctx context.Context, path, key string, value []byte, generation int64) (bool, error)
	Drop(ctx context.Context, path string) error
}

// setIfCurrent writes the hash field only while the generation is unchanged.
// KEYS: hash, generation. ARGV: generation, field, payload, ttl in ms.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

// RedisStore keeps one hash per view path, view:{path} -> {key: payload},
// next to its generation counter view:gen:{path}
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store; ttl 0 keeps entries until dropped
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// both keys share a hash tag so the script stays on one cluster slot
func (s *RedisStore) hashKey(path string) string {
	return "view:{" + path + "}"
}

func (s *RedisStore) generationKey(path string) string {
	return "view:gen:{" + path + "}"
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, path, key string) ([]byte, bool, error) {
	val, err := s.client.HGet(ctx, s.hashKey(path), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget %s: %w", path, err)
	}
	return val, true, nil
}

// Generation implements Store
func (s *RedisStore) Generation(ctx context.Context, path string) (int64, error) {
	gen, err := s.client.Get(ctx, s.generationKey(path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation %s: %w", path, err)
	}
	return gen, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, path, key string, value []byte, generation int64) (bool, error) {
	stored, err := setIfCurrent.Run(ctx, s.client,
		[]string{s.hashKey(path), s.generationKey(path)},
		strconv.FormatInt(generation, 10), key, value, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis hset %s: %w", path, err)
	}
	return stored == 1, nil
}

// Drop implements Store
func (s *RedisStore) Drop(ctx context.Context, path string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, s.generationKey(path))
		pipe.Del(ctx, s.hashKey(path))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", path, err)
	}
	return nil
}

// MemoryStore is an in-process Store used when Redis is not available in development
type MemoryStore struct {
	mu          sync.RWMutex
	views       map[string]map[string][]byte
	generations map[string]int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views:       make(map[string]map[string][]byte),
		generations: make(map[string]int64),
	}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, path, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.views[path][key]
	return val, ok, nil
}

// Generation implements Store
func (s *MemoryStore) Generation(_ context.Context, path string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generations[path], nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, path, key string, value []byte, generation int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[path] != generation {
		return false, nil
	}
	if s.views[path] == nil {
		s.views[path] = make(map[string][]byte)
	}
	s.views[path][key] = value
	return true, nil
}

// Drop implements Store
func (s *MemoryStore) Drop(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[path]++
	delete(s.views, path)
	return nil
}
