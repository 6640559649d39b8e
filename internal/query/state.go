package query

import (
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

// Status is the coordinator's position in its query lifecycle
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusFulfilled
	StatusFailed
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the coordinator.
//
// Token identifies the request that produced the state. Items and Total are
// only set when Status is StatusFulfilled; Err only when StatusFailed.
type State struct {
	Status    Status
	Query     string
	Token     uint64
	Items     []domain.Item
	Total     int
	Err       error
	FromCache bool
}

// Reason classifies the failure of a failed state
func (s State) Reason() domain.ErrorKind {
	if s.Status != StatusFailed {
		return domain.KindNone
	}
	return domain.KindOf(s.Err)
}

// Loading reports whether a provider call is outstanding
func (s State) Loading() bool {
	return s.Status == StatusPending
}

// Page returns the fulfilled items and total as a provider page
func (s State) Page() domain.Page {
	return domain.Page{Items: s.Items, Total: s.Total}
}

// Config controls debouncing, fetching and caching.
type Config struct {
	// Debounce is how long text must stay unchanged before a query fires.
	Debounce time.Duration
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Limit is the maximum number of items requested from the provider.
	Limit int
	// CacheTTL is how long a fulfilled result may be reused.
	CacheTTL time.Duration
	// CacheSize is the maximum number of cached queries.
	CacheSize int
}

const (
	defaultDebounce = 300 * time.Millisecond
	defaultTimeout  = 10 * time.Second
	defaultLimit    = 50
)

// DefaultConfig returns the recommended coordinator settings
func DefaultConfig() Config {
	return Config{
		Debounce:  defaultDebounce,
		Timeout:   defaultTimeout,
		Limit:     defaultLimit,
		CacheTTL:  defaultCacheTTL,
		CacheSize: defaultCacheSize,
	}
}

// withDefaults fills unset fields. A negative Debounce disables debouncing.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	switch {
	case c.Debounce == 0:
		c.Debounce = def.Debounce
	case c.Debounce < 0:
		c.Debounce = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Limit <= 0 {
		c.Limit = def.Limit
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	return c
}
