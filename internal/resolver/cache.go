package resolver

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vk/flakego/internal/ctxlog"
)

// DefaultCacheTTL is how long resolved handles stay fresh when the caller
// does not choose a TTL.
const DefaultCacheTTL = 10 * time.Minute

// CachedResolver memoizes successful resolutions by URL for a bounded
// time. Failures are never cached, so a flaky input is retried on the next
// resolve.
type CachedResolver struct {
	next  Resolver
	cache *gocache.Cache
	ttl   time.Duration
}

// Cached wraps a resolver with TTL memoization. A non-positive ttl falls
// back to DefaultCacheTTL.
func Cached(next Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Resolve serves the handle from cache when fresh, delegating otherwise.
func (c *CachedResolver) Resolve(ctx context.Context, spec Spec) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)

	if cached, found := c.cache.Get(spec.URL); found {
		if handle, ok := cached.(*Handle); ok {
			logger.Debug("Input cache hit.", "name", spec.Name, "url", spec.URL)
			return handle, nil
		}
	}

	handle, err := c.next.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}

	c.cache.Set(spec.URL, handle, c.ttl)
	return handle, nil
}
