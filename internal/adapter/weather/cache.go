package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
)

// CachedSource wraps a Source with an in-memory LRU cache. Entries expire
// after maxAge so a run never scores against weather older than that.
type CachedSource struct {
	inner   Source
	cache   *lruCache
	maxAge  time.Duration
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a weather source.
func NewCachedSource(inner Source, maxEntries int, maxAge time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		maxAge:  maxAge,
		metrics: metrics,
	}
}

func (c *CachedSource) FetchProfile(ctx context.Context, lat, lon float64) (domain.WeatherProfile, error) {
	// Coordinates within ~11 m share a cache slot.
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	if e, ok := c.cache.get(key); ok {
		if domain.Now().Sub(e.fetchedAt) <= c.maxAge {
			c.metrics.WeatherCache.WithLabelValues("hit").Inc()
			return e.profile, nil
		}
		c.metrics.WeatherCache.WithLabelValues("stale").Inc()
	} else {
		c.metrics.WeatherCache.WithLabelValues("miss").Inc()
	}

	profile, err := c.inner.FetchProfile(ctx, lat, lon)
	if err != nil {
		return profile, err
	}
	c.cache.put(key, cached{profile: profile, fetchedAt: domain.Now()})
	return profile, nil
}

type cached struct {
	profile   domain.WeatherProfile
	fetchedAt time.Time
}

// lruCache is a simple thread-safe LRU cache for weather profiles.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cached
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cached, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cached{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cached) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
