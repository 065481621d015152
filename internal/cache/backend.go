package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend stores raw bytes under fully qualified keys. Patterns use glob
// syntax where only '*' is meaningful. DeletePattern must remove every
// match in one step so readers never see half of a cohort.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
	Ping(ctx context.Context) error

	// Info reports backend counters for the health endpoint.
	Info() map[string]any
}
