// Package verbscache implements VerbsCache: a cache of per-endpoint HTTP
// verb support, keyed by scheme+authority with userinfo stripped. The map
// is sharded by an xxhash of the key so readers/writers across unrelated
// endpoints never contend on one global lock.
package verbscache

import (
	"net/url"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/xrootd-go/xrdcore/httpcore/headerparser"
)

const (
	// PositiveTTL is how long a successful verb-discovery result is cached.
	PositiveTTL = 6 * time.Hour
	// NegativeTTL is how long an unknown/failed discovery is cached, kept
	// shorter so a transient failure doesn't wedge an endpoint for hours.
	NegativeTTL = 15 * time.Minute

	shardCount = 32
)

type entry struct {
	expiry time.Time
	verbs  headerparser.Verb
	known  bool
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Cache is VerbsCache.
type Cache struct {
	shards [shardCount]*shard
}

// New returns an empty cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return c
}

// Key derives the cache key for rawURL: scheme://host[:port], userinfo and
// path stripped.
func Key(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}

func (c *Cache) shardFor(key string) *shard {
	h := xxhash.ChecksumString32(key)
	return c.shards[h%shardCount]
}

// Get returns the cached verbs for key, if present and unexpired.
func (c *Cache) Get(key string) (verbs headerparser.Verb, known, found bool) {
	sh := c.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.entries[key]
	if !ok || time.Now().After(e.expiry) {
		return 0, false, false
	}
	return e.verbs, e.known, true
}

// Put records a successful discovery (known=true, TTL = PositiveTTL) or a
// negative result (known=false, TTL = NegativeTTL).
func (c *Cache) Put(key string, verbs headerparser.Verb, known bool) {
	ttl := NegativeTTL
	if known {
		ttl = PositiveTTL
	}
	sh := c.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = entry{expiry: time.Now().Add(ttl), verbs: verbs, known: known}
	sh.mu.Unlock()
}

// Expire removes every entry whose expiry has passed; intended to be
// called periodically by an expiry goroutine.
func (c *Cache) Expire(now time.Time) (removed int) {
	for _, sh := range c.shards {
		sh.mu.Lock()
		for k, e := range sh.entries {
			if now.After(e.expiry) {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}
