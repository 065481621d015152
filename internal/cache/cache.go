package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures one namespace.
type Options struct {
	Prefix  string
	TTL     time.Duration
	Timeout time.Duration
}

// Cache is a handle on one namespace of a Backend. It is fail-open: backend
// and encoding failures are logged and counted, and callers see a miss or a
// skipped write.
type Cache struct {
	backend Backend
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  zerolog.Logger
	metrics *Metrics

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

// New creates a namespace handle. metrics may be nil.
func New(backend Backend, opts Options, logger zerolog.Logger, metrics *Metrics) *Cache {
	return &Cache{
		backend: backend,
		prefix:  opts.Prefix,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		logger:  logger.With().Str("component", "cache").Str("namespace", opts.Prefix).Logger(),
		metrics: metrics,
	}
}

// Prefix returns the namespace prefix.
func (c *Cache) Prefix() string {
	return c.prefix
}

// TTL returns the namespace default expiry.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get decodes the value stored under key into dest and reports whether it
// was found. Any failure is reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	raw, err := c.backend.Get(ctx, c.fullKey(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.fail(err, "get", key)
		}
		c.miss()
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.fail(err, "decode", key)
		c.miss()
		return false
	}

	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.hits.WithLabelValues(c.prefix).Inc()
	}
	return true
}

// Set stores value under key. A ttl of zero uses the namespace default.
// Values that cannot be encoded are skipped.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.fail(err, "encode", key)
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.backend.Set(ctx, c.fullKey(key), raw, ttl); err != nil {
		c.fail(err, "set", key)
	}
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.backend.Delete(ctx, c.fullKey(key)); err != nil {
		c.fail(err, "delete", key)
	}
}

// ClearPattern removes every key in the namespace matching pattern and
// returns how many were removed.
func (c *Cache) ClearPattern(ctx context.Context, pattern string) int {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	n, err := c.backend.DeletePattern(ctx, c.fullKey(pattern))
	if err != nil {
		c.fail(err, "clear", pattern)
		return 0
	}
	c.logger.Debug().Str("pattern", pattern).Int("deleted", n).Msg("Cleared cache keys")
	return n
}

// Stats reports the counters accumulated since start.
func (c *Cache) Stats() Stats {
	return newStats(c.prefix, c.hits.Load(), c.misses.Load(), c.errors.Load())
}

func (c *Cache) fullKey(key string) string {
	return c.prefix + ":" + key
}

func (c *Cache) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Cache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.misses.WithLabelValues(c.prefix).Inc()
	}
}

func (c *Cache) fail(err error, op, key string) {
	c.errors.Add(1)
	if c.metrics != nil {
		c.metrics.errors.WithLabelValues(c.prefix).Inc()
	}
	c.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("Cache operation failed")
}

// Cached returns the value under key, or calls load and caches its result.
// Errors from load are returned and nothing is cached.
func Cached[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	k := key.String()

	var value T
	if c.Get(ctx, k, &value) {
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	c.Set(ctx, k, value, 0)
	return value, nil
}
