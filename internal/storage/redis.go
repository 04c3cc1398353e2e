package storage

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed KeyValueStore used for durable
// watch-progress persistence. If the URL is empty or the connection
// fails, the client stays nil and all operations become no-ops: the
// engine keeps running with in-memory state only.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis at the given URL. Connection problems
// are logged, never fatal.
func NewRedisStore(redisURL string) *RedisStore {
	if redisURL == "" {
		log.Println("redis: no URL configured, durable progress storage disabled")
		return &RedisStore{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, durable progress storage disabled: %v", redisURL, err)
		return &RedisStore{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, durable progress storage disabled: %v", err)
		return &RedisStore{}
	}

	log.Println("redis: connected, durable progress storage enabled")
	return &RedisStore{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (s *RedisStore) Client() *redis.Client {
	return s.rdb
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.rdb == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// Set stores a blob with no expiration. Watch progress is never
// automatically destroyed, only cleared explicitly.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, key).Err()
}

// Close shuts down the Redis connection.
func (s *RedisStore) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
