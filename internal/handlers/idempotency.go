package handlers

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// IdempotencyCache remembers POST /events responses by (client, Idempotency-Key)
// so client retries do not process an event twice.
type IdempotencyCache struct {
	mu    sync.Mutex
	cache *cache.Cache
}

type cachedResponse struct {
	status int
	body   any
}

// NewIdempotencyCache keeps responses for ttl and purges expired entries every 2*ttl.
func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	return &IdempotencyCache{cache: cache.New(ttl, 2*ttl)}
}

// Do returns the cached response for key, or runs fn and caches its result.
// Calls for keys are serialized so a concurrent retry waits for the first attempt.
func (ic *IdempotencyCache) Do(key string, fn func() (int, any)) (status int, body any, replayed bool) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if v, found := ic.cache.Get(key); found {
		r := v.(cachedResponse)
		return r.status, r.body, true
	}

	status, body = fn()
	ic.cache.Set(key, cachedResponse{status: status, body: body}, cache.DefaultExpiration)
	return status, body, false
}
