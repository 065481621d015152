package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryBackend is an in-process Backend for single-instance deployments and
// tests. Pattern deletes hold the write lock for the whole scan.
type MemoryBackend struct {
	mu    sync.RWMutex
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryBackend creates a MemoryBackend and starts its expiry loop.
// Call Close to stop it.
func NewMemoryBackend(capacity uint64) *MemoryBackend {
	items := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
		ttlcache.WithCapacity[string, []byte](capacity),
	)
	go items.Start()

	return &MemoryBackend{items: items}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	item := b.items.Get(key)
	if item == nil {
		return nil, ErrMiss
	}
	return item.Value(), nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.items.Set(key, value, ttl)
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.items.Delete(key)
	return nil
}

func (b *MemoryBackend) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	deleted := 0
	for _, key := range b.items.Keys() {
		if ok, _ := path.Match(pattern, key); ok {
			b.items.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (b *MemoryBackend) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (b *MemoryBackend) Info() map[string]any {
	return map[string]any{
		"backend": "memory",
		"items":   b.items.Len(),
	}
}

// Close stops the expiry loop.
func (b *MemoryBackend) Close() {
	b.items.Stop()
}
