package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/greenblatt/pkg/logger"
)

// Namespaces and their default lifetimes
const (
	NamespaceMetrics  = "metrics"
	NamespaceAnalysis = "analysis"

	DefaultMetricsTTL  = 6 * time.Hour
	DefaultAnalysisTTL = 24 * time.Hour
)

// Key builds "<namespace>:<kind>:<SYMBOL>", e.g. Key("buffett", "metrics", "aapl") = "buffett:metrics:AAPL"
func Key(namespace, kind, symbol string) string {
	return fmt.Sprintf("%s:%s:%s", strings.ToLower(namespace), strings.ToLower(kind), strings.ToUpper(symbol))
}

// ResultCache is a cache-aside layer over a Store
// ⭐ SSOT: every memoized computation goes through GetOrCompute
type ResultCache struct {
	store  Store
	logger *logger.Logger
}

// New creates a result cache over store
func New(store Store, log *logger.Logger) *ResultCache {
	return &ResultCache{
		store:  store,
		logger: log.WithComponent("cache"),
	}
}

// Invalidate removes key from the underlying store
func (c *ResultCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// GetOrCompute returns the live value under key or runs fn and stores its result.
// Read and decode failures count as misses. fn errors are returned and not stored.
// A failed write is logged and the computed value still returned.
func GetOrCompute[T any](ctx context.Context, c *ResultCache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache read failed, recomputing")
	}

	if found {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.WithField("key", key).Debug("Cache hit")
			return cached, nil
		}
		c.logger.WithField("key", key).Warn("Cache entry undecodable, recomputing")
	}

	c.logger.WithField("key", key).Debug("Cache miss")

	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache encode failed")
		return value, nil
	}

	if err := c.store.Set(ctx, key, encoded, ttl); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache write failed")
	}

	return value, nil
}
