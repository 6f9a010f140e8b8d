package github

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of endpoints retained when no size is given
const DefaultCacheSize = 128

// CacheStats provides statistics about snapshot cache usage
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Shared  int64 `json:"shared"`
	Entries int   `json:"entries"`
}

// CachingAssembler deduplicates concurrent assemblies of the same endpoint
// and keeps successful snapshots for a short TTL. Failures are never cached.
// Cached snapshots are shared between callers and must not be mutated.
type CachingAssembler struct {
	inner SnapshotAssembler
	cache *expirable.LRU[string, *RepositoryInfo]
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
}

// NewCachingAssembler wraps inner with a TTL cache keyed by endpoint URL.
// A ttl <= 0 keeps entries until they are evicted by size.
func NewCachingAssembler(inner SnapshotAssembler, size int, ttl time.Duration) *CachingAssembler {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingAssembler{
		inner: inner,
		cache: expirable.NewLRU[string, *RepositoryInfo](size, nil, ttl),
	}
}

// Assemble returns a cached snapshot or assembles a fresh one
func (c *CachingAssembler) Assemble(ctx context.Context, endpoint string) (*RepositoryInfo, error) {
	if info, ok := c.cache.Get(endpoint); ok {
		c.hits.Add(1)
		return info, nil
	}
	c.misses.Add(1)

	// The shared fetch outlives any single caller. Each caller stops waiting
	// when its own ctx ends; per-request timeouts still bound the fetch.
	ch := c.group.DoChan(endpoint, func() (interface{}, error) {
		info, err := c.inner.Assemble(context.WithoutCancel(ctx), endpoint)
		if err != nil {
			return nil, err
		}
		c.cache.Add(endpoint, info)
		return info, nil
	})

	select {
	case <-ctx.Done():
		return nil, &GitHubError{
			Type:     ErrorTypeNetwork,
			Message:  fmt.Sprintf("request aborted: %v", ctx.Err()),
			Cause:    ctx.Err(),
			Resource: fmt.Sprintf("%s %s", resourceRepository, endpoint),
		}
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RepositoryInfo), nil
	}
}

// Invalidate drops the cached snapshot for endpoint
func (c *CachingAssembler) Invalidate(endpoint string) {
	c.cache.Remove(endpoint)
}

// Purge drops every cached snapshot
func (c *CachingAssembler) Purge() {
	c.cache.Purge()
}

// GetStats returns current cache statistics
func (c *CachingAssembler) GetStats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Shared:  c.shared.Load(),
		Entries: c.cache.Len(),
	}
}
