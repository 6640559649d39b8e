package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/sift/internal/domain"
)

func TestCacheLazyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewCache(4, time.Minute)
	c.now = func() time.Time { return now }

	c.Put("foo", domain.Page{Items: []domain.Item{{ID: "1", Label: "foo"}}, Total: 1})

	now = now.Add(59 * time.Second)
	page, ok := c.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 1, page.Total)

	now = now.Add(time.Second)
	assert.Equal(t, 1, c.Len(), "expired entries stay until read")
	_, ok = c.Get("foo")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheKeysAreExact(t *testing.T) {
	c := NewCache(4, time.Minute)
	c.Put("Foo", domain.Page{Total: 1})

	_, ok := c.Get("foo")
	assert.False(t, ok)
	_, ok = c.Get("Foo ")
	assert.False(t, ok)
}

func TestCacheCopiesItems(t *testing.T) {
	c := NewCache(4, time.Minute)
	items := []domain.Item{{ID: "1", Label: "one"}}
	c.Put("q", domain.Page{Items: items, Total: 1})

	items[0].Label = "changed"

	page, ok := c.Get("q")
	require.True(t, ok)
	assert.Equal(t, "one", page.Items[0].Label)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Minute)
	c.Put("a", domain.Page{})
	c.Put("b", domain.Page{})
	_, _ = c.Get("a")
	c.Put("c", domain.Page{})

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCacheDefaults(t *testing.T) {
	c := NewCache(0, 0)
	assert.Equal(t, 5*time.Minute, c.TTL())

	c.Put("x", domain.Page{})
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig(), cfg)

	cfg = Config{Debounce: -1, Limit: 5}.withDefaults()
	assert.Equal(t, time.Duration(0), cfg.Debounce)
	assert.Equal(t, 5, cfg.Limit)
}
