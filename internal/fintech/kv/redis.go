package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	opTimeout  = 3 * time.Second
	maxRetries = 3
)

// compareAndDeleteScript deletes the key only when it holds the expected
// value. Returns 1 deleted, 0 mismatch, -1 missing.
var compareAndDeleteScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == false then
	return -1
end
if v ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisStore implements Store on a Redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to addr and verifies connectivity before returning.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisFromClient wraps an existing client. Used by tests.
func NewRedisFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// withRetry runs op up to maxRetries times with exponential backoff,
// giving each attempt its own timeout. Context cancellation aborts early.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := range maxRetries {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		err = op(opCtx)
		cancel()

		if err == nil || errors.Is(err, ErrKeyMissing) {
			return err
		}
	}
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := withRetry(ctx, func(ctx context.Context) error {
		v, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrKeyMissing
		}
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

func (s *RedisStore) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return withRetry(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, key, value, ttl).Err()
	})
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, key).Err()
	})
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	var present bool
	err := withRetry(ctx, func(ctx context.Context) error {
		n, err := s.client.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		present = n > 0
		return nil
	})
	return present, err
}

func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	var count int64
	err := withRetry(ctx, func(ctx context.Context) error {
		n, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	return count, err
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return withRetry(ctx, func(ctx context.Context) error {
		return s.client.Expire(ctx, key, ttl).Err()
	})
}

func (s *RedisStore) CompareAndDelete(ctx context.Context, key, want string) (CompareAndDeleteResult, error) {
	result := CadMissing
	err := withRetry(ctx, func(ctx context.Context) error {
		n, err := compareAndDeleteScript.Run(ctx, s.client, []string{key}, want).Int()
		if err != nil {
			return err
		}
		switch n {
		case 1:
			result = CadDeleted
		case 0:
			result = CadMismatch
		default:
			result = CadMissing
		}
		return nil
	})
	return result, err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(pingCtx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
