package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type (
	// RedisStore is a key-prefixed view over a Redis client
	RedisStore struct {
		client redis.UniversalClient
		prefix string
	}

	// RedisTx queues writes in a MULTI/EXEC pipeline until committed
	RedisTx struct {
		store *RedisStore
		pipe  redis.Pipeliner
		done  bool
	}

	// RedisConfig holds connection settings for a Redis store
	RedisConfig struct {
		Addr     string
		Password string
		Prefix   string
		DB       int
	}
)

// incrementScript keeps INCR and PEXPIRE in one server-side step so a
// counter can never be left without a TTL
var incrementScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local window = tonumber(ARGV[1])
if window > 0 and redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], window)
end
return n
`)

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrTransactionClosed  = errors.New("transaction already closed")
	ErrRedisNotConfigured = errors.New("redis is not configured")
)

// NewRedisStore connects a store using the given configuration
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Prefix)
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(
	client redis.UniversalClient, prefix string,
) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	res, err := s.client.Get(ctx, s.keyFor(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return res, err
}

func (s *RedisStore) Set(
	ctx context.Context, key, value string, ttl time.Duration,
) error {
	return s.client.Set(ctx, s.keyFor(key), value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) (int64, error) {
	return s.client.Del(ctx, s.keyFor(key)).Result()
}

// Increment atomically increments a counter and, in the same script, gives
// it an expiry of window whenever it has none
func (s *RedisStore) Increment(
	ctx context.Context, key string, window time.Duration,
) (int64, error) {
	return incrementScript.Run(ctx, s.client,
		[]string{s.keyFor(key)}, window.Milliseconds(),
	).Int64()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Begin opens a transactional pipeline
func (s *RedisStore) Begin() *RedisTx {
	return &RedisTx{store: s, pipe: s.client.TxPipeline()}
}

func (s *RedisStore) keyFor(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Set queues a write in the transaction
func (t *RedisTx) Set(
	ctx context.Context, key, value string, ttl time.Duration,
) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.pipe.Set(ctx, t.store.keyFor(key), value, ttl)
	return nil
}

// Delete queues a delete in the transaction
func (t *RedisTx) Delete(ctx context.Context, key string) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.pipe.Del(ctx, t.store.keyFor(key))
	return nil
}

// Commit executes the queued commands atomically
func (t *RedisTx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	_, err := t.pipe.Exec(ctx)
	return err
}

// Rollback discards the queued commands
func (t *RedisTx) Rollback(_ context.Context) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	t.pipe.Discard()
	return nil
}

// Closed reports whether the transaction was committed or rolled back
func (t *RedisTx) Closed() bool {
	return t.done
}
