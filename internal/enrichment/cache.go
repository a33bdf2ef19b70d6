package enrichment

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the TTL cache capability the coordinator depends on. Tests inject
// a fake; production uses a go-cache instance constructed once at startup.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

type memoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache returns a process-wide in-memory TTL cache. Entries are
// never explicitly torn down; they expire and get swept.
func NewMemoryCache() Cache {
	return &memoryCache{c: gocache.New(SuccessTTL, 10*time.Minute)}
}

func (m *memoryCache) Get(key string) (any, bool) {
	return m.c.Get(key)
}

func (m *memoryCache) Set(key string, value any, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}
