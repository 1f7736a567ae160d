package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultCacheTTL is how long a reply stays cached.
const DefaultCacheTTL = time.Hour

// Cache is an in-memory reply cache shared by concurrent requests.
// Errors are never cached.
type Cache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache holding up to maxBytes of reply text.
func NewCache(maxBytes int64, ttl time.Duration) (*Cache, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reply cache: %w", err)
	}
	return &Cache{cache: c, ttl: ttl}, nil
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.cache.Close()
}

// Hits returns the number of cache hits so far.
func (c *Cache) Hits() uint64 {
	if c.cache.Metrics == nil {
		return 0
	}
	return c.cache.Metrics.Hits()
}

// Key derives the cache key for a prompt sent to a given namespace, usually
// "provider/model".
func Key(namespace, prompt string) string {
	sum := sha256.Sum256([]byte(namespace + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) get(key string) (string, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.cache.Del(key)
		return "", false
	}
	return s, true
}

func (c *Cache) set(key, reply string) {
	if c.cache.SetWithTTL(key, reply, int64(len(reply)), c.ttl) {
		c.cache.Wait()
	}
}

type cached struct {
	next      Completer
	cache     *Cache
	namespace string
}

// Cached serves repeated prompts from cache. namespace separates replies of
// different providers and models sharing one Cache.
func Cached(next Completer, cache *Cache, namespace string) Completer {
	return &cached{next: next, cache: cache, namespace: namespace}
}

func (c *cached) Complete(ctx context.Context, prompt string) (string, error) {
	key := Key(c.namespace, prompt)
	if reply, ok := c.cache.get(key); ok {
		return reply, nil
	}

	reply, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.set(key, reply)
	return reply, nil
}
