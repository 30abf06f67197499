package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"lingo-trainer/internal/app"

	"golang.org/x/sync/singleflight"
)

// CachedSource keeps fetched seed documents in memory with a TTL so a catalogue reset
// does not hit a remote source again right away.
type CachedSource struct {
	source app.SeedSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[app.SeedDocument]cachedDocument
}

type cachedDocument struct {
	raw       []byte
	expiresAt time.Time
}

func NewCachedSource(source app.SeedSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[app.SeedDocument]cachedDocument),
	}
}

func (c *CachedSource) Fetch(ctx context.Context, doc app.SeedDocument) ([]byte, error) {
	if raw, ok := c.lookup(doc); ok {
		return raw, nil
	}

	result, err, _ := c.sf.Do(string(doc), func() (interface{}, error) {
		if raw, ok := c.lookup(doc); ok {
			return raw, nil
		}

		raw, err := c.source.Fetch(ctx, doc)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[doc] = cachedDocument{
			raw:       raw,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), result.([]byte)...), nil
}

func (c *CachedSource) lookup(doc app.SeedDocument) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[doc]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return append([]byte(nil), entry.raw...), true
}

func (c *CachedSource) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
