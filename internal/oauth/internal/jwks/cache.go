package jwks

import (
	"crypto/rsa"
	"sync"
	"time"
)

// Cache holds the most recently fetched key set, indexed by kid.
// It is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewCache creates a key set cache whose contents go stale after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		keys: make(map[string]*rsa.PublicKey),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the key for keyID. The second result is false when the
// key is absent; the third is false when the whole set has gone stale.
func (c *Cache) Get(keyID string) (*rsa.PublicKey, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.keys[keyID]
	return key, ok, c.freshLocked()
}

func (c *Cache) freshLocked() bool {
	if c.fetchedAt.IsZero() {
		return false
	}
	return c.now().Before(c.fetchedAt.Add(c.ttl))
}

// Replace swaps in a freshly fetched key set.
func (c *Cache) Replace(keys map[string]*rsa.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys = keys
	c.fetchedAt = c.now()
}

// Size returns the number of keys in the current set.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.keys)
}
