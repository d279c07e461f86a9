package memo

import "github.com/QuarticCat/tinymist/internal/core/domain"

// StoreWithCost publishes an entry with an explicit cost, bypassing the
// wall-clock cost measurement so eviction behavior is deterministic in tests.
func (c *Cache) StoreWithCost(kind Kind, fp domain.Fingerprint, value any, cost int64) {
	c.store(key{kind: kind, fp: fp}, value, cost)
}

// Touch bumps an entry's recency as a cache hit would.
func (c *Cache) Touch(kind Kind, fp domain.Fingerprint) bool {
	_, ok := c.lookup(key{kind: kind, fp: fp})
	return ok
}

// Contains reports whether an entry is retained.
func (c *Cache) Contains(kind Kind, fp domain.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key{kind: kind, fp: fp}]
	return ok
}
