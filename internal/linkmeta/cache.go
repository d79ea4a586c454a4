package linkmeta

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache wraps a Lookup with Redis-backed caching. A nil client makes it a
// passthrough; Redis failures fall back to the backing lookup.
type Cache struct {
	base  Lookup
	redis *redis.Client
	ttl   time.Duration
	log   log.FieldLogger
}

func NewCache(base Lookup, client *redis.Client, ttl time.Duration, logger log.FieldLogger) *Cache {
	if base == nil {
		panic("linkmeta.NewCache: base lookup is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{base: base, redis: client, ttl: ttl, log: logger}
}

func (c *Cache) Lookup(ctx context.Context, rawURL string) (Metadata, error) {
	if m, ok := c.load(ctx, rawURL); ok {
		return m, nil
	}
	m, err := c.base.Lookup(ctx, rawURL)
	if err != nil {
		return Metadata{}, err
	}
	c.store(ctx, rawURL, m)
	return m, nil
}

func (c *Cache) load(ctx context.Context, rawURL string) (Metadata, bool) {
	if c.redis == nil {
		return Metadata{}, false
	}
	key := cacheKey(rawURL)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Debug("link metadata cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return Metadata{}, false
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return Metadata{}, false
	}
	return m, true
}

func (c *Cache) store(ctx context.Context, rawURL string, m Metadata) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(rawURL), data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("link metadata cache write failed")
	}
}

func cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return "meta:" + hex.EncodeToString(sum[:])
}

// NewRedisClient parses a redis:// URL. An empty URL returns nil, which
// disables caching.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
