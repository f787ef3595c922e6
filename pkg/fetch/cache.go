package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/records"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	// TTL of a cached response.
	TTL time.Duration
	// Prefix prepended to every key.
	Prefix string
}

// DefaultCacheConfig returns the cache settings used when none are given.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:    30 * time.Second,
		Prefix: "recordsd:",
	}
}

// Cache is a Fetcher that keeps upstream responses in Redis.
// Cache failures are logged and fall through to the wrapped Fetcher; they
// never fail a fetch on their own.
type Cache struct {
	next     Fetcher
	client   *redis.Client
	config   CacheConfig
	observer Observer
	log      *slog.Logger
}

// NewCache wraps next with a Redis-backed response cache.
func NewCache(next Fetcher, client *redis.Client, config CacheConfig) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig().TTL
	}
	return &Cache{
		next:     next,
		client:   client,
		config:   config,
		observer: NoopObserver{},
		log:      logging.Nop(),
	}
}

// SetObserver sets the observer notified of cache lookups.
func (c *Cache) SetObserver(o Observer) {
	if o != nil {
		c.observer = o
	}
}

// SetLogger sets the operational logger.
func (c *Cache) SetLogger(log *slog.Logger) {
	if log != nil {
		c.log = log
	}
}

// Key returns the cache key for a collection query.
func (c *Cache) Key(collection string, filter records.Filter) string {
	return c.config.Prefix + collection + "?" + filter.Encode()
}

// Fetch returns the cached response or fetches and stores it.
func (c *Cache) Fetch(ctx context.Context, collection string, filter records.Filter) ([]records.Record, error) {
	key := c.Key(collection, filter)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var recs []records.Record
		if jsonErr := json.Unmarshal(data, &recs); jsonErr == nil {
			c.log.Debug("fetch cache hit", "key", key)
			c.observer.OnCacheLookup(collection, true)
			if recs == nil {
				recs = []records.Record{}
			}
			return recs, nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("fetch cache unavailable", "key", key, "error", err)
	}

	c.observer.OnCacheLookup(collection, false)
	recs, err := c.next.Fetch(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(recs)
	if err != nil {
		c.log.Warn("failed to encode cache entry", "key", key, "error", err)
		return recs, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.config.TTL).Err(); err != nil {
		c.log.Warn("failed to store cache entry", "key", key, "error", err)
	}
	return recs, nil
}

// Invalidate removes every cached response of a collection.
func (c *Cache) Invalidate(ctx context.Context, collection string) error {
	iter := c.client.Scan(ctx, 0, c.config.Prefix+collection+`\?*`, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
