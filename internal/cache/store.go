package cache

import (
	"context"
	"time"
)

// Store is a byte-level key/value store with per-entry expiry.
// Implemented by MemoryStore and pkg/redis.Store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
