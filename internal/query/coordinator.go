// Package query turns a stream of query-text changes into debounced,
// cancelable provider calls where only the latest request may win.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

// Option customizes a Coordinator
type Option func(*Coordinator)

// WithCache makes the coordinator use cache instead of a private one.
// Pass the same cache to several coordinators to share results between them.
func WithCache(cache *Cache) Option {
	return func(c *Coordinator) {
		c.cache = cache
	}
}

// WithObserver reports fetch and cache telemetry to o
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock replaces the time source used for cache expiry
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

type subscriber struct {
	id int
	fn func(State)
}

// Coordinator owns the query lifecycle for one selector.
//
// Every debounce fire issues a new request token. A provider response is
// applied only while its token is still the latest one issued; anything
// older is dropped regardless of when it arrives. Superseded requests also
// have their context cancelled so transports that support it can stop early.
type Coordinator struct {
	provider domain.SearchProvider
	cfg      Config
	cache    *Cache
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	// notifyMu is held across a transition and its delivery so subscribers
	// observe transitions in the order they were made.
	notifyMu sync.Mutex

	mu          sync.Mutex
	state       State
	timer       *time.Timer
	debounceSeq uint64
	latest      uint64
	cancel      context.CancelFunc
	subs        []subscriber
	nextSub     int
	closed      bool
}

// NewCoordinator creates a coordinator querying provider
func NewCoordinator(provider domain.SearchProvider, cfg Config, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		provider: provider,
		cfg:      cfg.withDefaults(),
		observer: NoOpObserver{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewCache(c.cfg.CacheSize, c.cfg.CacheTTL)
		c.cache.now = c.now
	}
	return c
}

// OnQueryTextChanged schedules a query for text once the debounce delay
// passes without another change. Earlier scheduled texts are dropped.
func (c *Coordinator) OnQueryTextChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.debounceSeq++
	seq := c.debounceSeq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		c.fire(seq, text)
	})
}

// Retry re-issues the query of a failed state. It reports whether a retry
// was scheduled.
func (c *Coordinator) Retry() bool {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()

	if st.Status != StatusFailed {
		return false
	}
	c.logger.Debug("retrying query", "query", st.Query)
	c.OnQueryTextChanged(st.Query)
	return true
}

// State returns the current state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every state transition. Delivery is
// synchronous and ordered; fn must not block. The returned function removes
// the subscription.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// InvalidateCache drops every cached result
func (c *Coordinator) InvalidateCache() {
	c.cache.Purge()
	c.logger.Debug("cleared query cache")
}

// Close stops the debounce timer and cancels any outstanding request.
// Late responses are ignored and further text changes are no-ops.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// fire runs when the debounce timer for seq expires
func (c *Coordinator) fire(seq uint64, text string) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || seq != c.debounceSeq {
		c.mu.Unlock()
		return
	}

	c.timer = nil
	c.latest++
	token := c.latest

	// Supersede whatever is in flight; its response will fail the token check.
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if page, ok := c.cache.Get(text); ok {
		c.observer.RecordCacheHit()
		st := State{
			Status:    StatusFulfilled,
			Query:     text,
			Token:     token,
			Items:     page.Items,
			Total:     page.Total,
			FromCache: true,
		}
		subs := c.setStateLocked(st)
		c.mu.Unlock()

		c.logger.Debug("query served from cache", "query", text, "token", token, "results", len(page.Items))
		publish(subs, st)
		return
	}

	c.observer.RecordCacheMiss()
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	c.cancel = cancel
	st := State{Status: StatusPending, Query: text, Token: token}
	subs := c.setStateLocked(st)
	c.mu.Unlock()

	c.logger.Debug("query issued", "query", text, "token", token)
	go c.fetch(ctx, cancel, text, token)
	publish(subs, st)
}

// fetch calls the provider and applies the outcome if token is still current
func (c *Coordinator) fetch(ctx context.Context, cancel context.CancelFunc, text string, token uint64) {
	defer cancel()

	start := time.Now()
	page, err := c.provider.Search(ctx, text, c.cfg.Limit)
	elapsed := time.Since(start)
	if err != nil {
		err = normalizeError(ctx, err)
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || token != c.latest {
		c.mu.Unlock()
		c.observer.RecordDiscard()
		c.logger.Debug("discarding superseded response", "query", text, "token", token, "error", err)
		return
	}
	c.cancel = nil

	var st State
	if err != nil {
		st = State{Status: StatusFailed, Query: text, Token: token, Err: err}
	} else {
		page = c.clampPage(page)
		c.cache.Put(text, page)
		st = State{
			Status: StatusFulfilled,
			Query:  text,
			Token:  token,
			Items:  page.Items,
			Total:  page.Total,
		}
	}
	subs := c.setStateLocked(st)
	c.mu.Unlock()

	kind := domain.KindOf(err)
	c.observer.RecordFetch(elapsed, kind)
	if err != nil {
		c.logger.Warn("query failed", "query", text, "token", token, "kind", kind.String(), "error", err)
	} else {
		c.logger.Debug("query complete", "query", text, "token", token, "results", len(st.Items), "total", st.Total, "elapsed", elapsed)
	}
	publish(subs, st)
}

// clampPage enforces the request limit and keeps Total at least the number of
// returned items.
func (c *Coordinator) clampPage(page domain.Page) domain.Page {
	if len(page.Items) > c.cfg.Limit {
		c.logger.Warn("provider exceeded limit", "limit", c.cfg.Limit, "returned", len(page.Items))
		page.Items = page.Items[:c.cfg.Limit]
	}
	if page.Total < len(page.Items) {
		page.Total = len(page.Items)
	}
	return page
}

func (c *Coordinator) setStateLocked(st State) []subscriber {
	c.state = st
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	return subs
}

func publish(subs []subscriber, st State) {
	for _, s := range subs {
		s.fn(st)
	}
}

// normalizeError makes sure err wraps ErrProviderUnavailable or
// ErrProviderRejected. A request that ran out of time is unavailable even if
// the provider reported the expiry as a cancellation.
func normalizeError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return err
		}
		return fmt.Errorf("%w: timed out: %w", domain.ErrProviderUnavailable, err)
	}
	switch domain.KindOf(err) {
	case domain.KindProviderRejected:
		return err
	case domain.KindProviderUnavailable:
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}
