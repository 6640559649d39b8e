package query

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmcdole/sift/internal/domain"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute
)

// cacheEntry holds a provider page along with the time it was stored.
type cacheEntry struct {
	items    []domain.Item
	total    int
	storedAt time.Time
}

// Cache holds provider results keyed by the exact query text.
//
// Entries older than the TTL are treated as absent when read; nothing runs in
// the background to evict them. A Cache is owned by one Coordinator unless it
// is handed to others explicitly with WithCache.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache holding at most size entries for ttl each.
// Non-positive values fall back to 256 entries and 5 minutes.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	// lru.New only errors on non-positive size which we guard above.
	entries, _ := lru.New[string, cacheEntry](size)
	return &Cache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached page for query if it is younger than the TTL
func (c *Cache) Get(query string) (domain.Page, bool) {
	entry, ok := c.entries.Get(query)
	if !ok {
		return domain.Page{}, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.entries.Remove(query)
		return domain.Page{}, false
	}
	return domain.Page{Items: entry.items, Total: entry.total}, true
}

// Put stores page under query, replacing any previous entry
func (c *Cache) Put(query string, page domain.Page) {
	items := make([]domain.Item, len(page.Items))
	copy(items, page.Items)
	c.entries.Add(query, cacheEntry{
		items:    items,
		total:    page.Total,
		storedAt: c.now(),
	})
}

// Remove drops the entry for query
func (c *Cache) Remove(query string) {
	c.entries.Remove(query)
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been read
func (c *Cache) Len() int {
	return c.entries.Len()
}

// TTL returns how long entries stay valid
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
