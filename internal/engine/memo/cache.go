// Package memo implements the compile/analyze cache: a fingerprint-keyed
// memoization layer with request coalescing and cost-weighted eviction. It is
// the only structure mutated concurrently by workers; everything it stores is
// immutable once published.
package memo

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/QuarticCat/tinymist/internal/core/domain"
)

// Kind names one class of cached computation.
type Kind string

const (
	// KindCompile caches the full compile of a snapshot.
	KindCompile Kind = "compile"
	// KindDocIndex caches the per-document analysis index.
	KindDocIndex Kind = "doc_index"
	// KindFormat caches formatter output per document.
	KindFormat Kind = "format"
)

// ComputeFunc produces the value for a cache entry. It must be pure with
// respect to the fingerprint: a hit must be byte-identical to a fresh compute.
type ComputeFunc func(ctx context.Context) (any, error)

type key struct {
	kind Kind
	fp   domain.Fingerprint
}

func (k key) String() string {
	return string(k.kind) + "/" + k.fp.String()
}

type entry struct {
	value any
	cost  int64
	gen   uint64
}

// Cache memoizes computation results keyed by (kind, fingerprint).
type Cache struct {
	group singleflight.Group

	mu       sync.Mutex
	entries  map[key]*entry
	gen      uint64
	used     int64
	budget   int64
	computes map[key]uint64
}

// New creates a cache bounded by the given total cost budget.
func New(budget int64) *Cache {
	if budget <= 0 {
		budget = domain.DefaultCacheBudget
	}
	return &Cache{
		entries:  make(map[key]*entry),
		budget:   budget,
		computes: make(map[key]uint64),
	}
}

// GetOrCompute returns the cached value for (kind, fp), computing it at most
// once concurrently. Callers waiting on an in-flight computation are released
// early if their own context is cancelled; the computation itself keeps
// running for the remaining waiters. Failed computations are never cached and
// every waiter receives the error.
func (c *Cache) GetOrCompute(ctx context.Context, kind Kind, fp domain.Fingerprint, fn ComputeFunc) (any, error) {
	k := key{kind: kind, fp: fp}

	if val, ok := c.lookup(k); ok {
		return val, nil
	}

	// The compute outlives the leader caller: cancelling the leader must not
	// fail waiters whose own contexts are still live.
	computeCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(k.String(), func() (any, error) {
		// A racing caller may have published the entry between our lookup
		// and the coalescing point.
		if val, ok := c.lookup(k); ok {
			return val, nil
		}

		start := time.Now()
		val, err := fn(computeCtx)
		if err != nil {
			return nil, err
		}

		cost := time.Since(start).Microseconds()
		if cost < 1 {
			cost = 1
		}
		c.store(k, val, cost)
		return val, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, domain.Detail(domain.ErrCancelled, "cause", context.Cause(ctx).Error())
	}
}

// Computes reports how many times the compute function actually ran for a
// key. Tests use it to assert the coalescing and idempotence properties.
func (c *Cache) Computes(kind Kind, fp domain.Fingerprint) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computes[key{kind: kind, fp: fp}]
}

// Used returns the total retained cost.
func (c *Cache) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Len returns the number of retained entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(k key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.gen++
	e.gen = c.gen
	return e.value, true
}

// store publishes an entry atomically and applies eviction pressure. The
// just-stored entry is exempt so a single oversized value cannot evict
// itself mid-handoff.
func (c *Cache) store(k key, value any, cost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[k]; ok {
		c.used -= old.cost
	}

	c.gen++
	c.entries[k] = &entry{value: value, cost: cost, gen: c.gen}
	c.used += cost
	c.computes[k]++

	c.evictLocked(k)
}

// evictLocked drops least-recently-used entries until the budget holds,
// preferring cheap entries among equally old ones so one expensive compile
// survives a burst of cheap lookups. In-flight computations are not entries
// yet and can never be evicted.
func (c *Cache) evictLocked(keep key) {
	for c.used > c.budget && len(c.entries) > 1 {
		var victim key
		var victimEntry *entry
		for k, e := range c.entries {
			if k == keep {
				continue
			}
			if victimEntry == nil || less(e, victimEntry) {
				victim = k
				victimEntry = e
			}
		}
		if victimEntry == nil {
			return
		}
		c.used -= victimEntry.cost
		delete(c.entries, victim)
	}
}

func less(a, b *entry) bool {
	if a.gen != b.gen {
		return a.gen < b.gen
	}
	return a.cost < b.cost
}
