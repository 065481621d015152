package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// deleteByPattern runs server-side so the KEYS scan and the deletes are one
// atomic step. DEL is chunked to stay under Lua's unpack limit.
var deleteByPattern = redis.NewScript(0, `
local keys = redis.call('KEYS', ARGV[1])
for i = 1, #keys, 5000 do
	redis.call('DEL', unpack(keys, i, math.min(i + 4999, #keys)))
end
return #keys
`)

// NewRedisPool creates a redigo connection pool. The pool is shared with the
// session store.
func NewRedisPool(addr, password string, db int) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		MaxActive:   50,
		IdleTimeout: 240 * time.Second,
		Wait:        true,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr,
				redis.DialPassword(password),
				redis.DialDatabase(db),
				redis.DialConnectTimeout(2*time.Second),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// RedisBackend is a Backend on top of a redigo pool.
type RedisBackend struct {
	pool *redis.Pool
}

// NewRedisBackend creates a new RedisBackend
func NewRedisBackend(pool *redis.Pool) *RedisBackend {
	return &RedisBackend{pool: pool}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	value, err := redis.Bytes(redis.DoContext(conn, ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrMiss
	}
	return value, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	if ttl > 0 {
		_, err = redis.DoContext(conn, ctx, "SET", key, value, "PX", ttl.Milliseconds())
	} else {
		_, err = redis.DoContext(conn, ctx, "SET", key, value)
	}
	return err
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	_, err = redis.DoContext(conn, ctx, "DEL", key)
	return err
}

func (b *RedisBackend) DeletePattern(ctx context.Context, pattern string) (int, error) {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	return redis.Int(deleteByPattern.DoContext(ctx, conn, pattern))
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	_, err = redis.DoContext(conn, ctx, "PING")
	return err
}

func (b *RedisBackend) Info() map[string]any {
	stats := b.pool.Stats()
	return map[string]any{
		"backend":            "redis",
		"active_connections": stats.ActiveCount,
		"idle_connections":   stats.IdleCount,
		"wait_count":         stats.WaitCount,
	}
}
