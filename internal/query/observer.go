package query

import (
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

// Observer receives coordinator telemetry. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// RecordFetch reports a provider call that completed and was applied.
	RecordFetch(duration time.Duration, kind domain.ErrorKind)
	// RecordCacheHit reports a query answered from the cache.
	RecordCacheHit()
	// RecordCacheMiss reports a query that had to go to the provider.
	RecordCacheMiss()
	// RecordDiscard reports a provider response dropped because a newer request superseded it.
	RecordDiscard()
}

// NoOpObserver discards telemetry (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) RecordFetch(time.Duration, domain.ErrorKind) {}
func (NoOpObserver) RecordCacheHit()                             {}
func (NoOpObserver) RecordCacheMiss()                            {}
func (NoOpObserver) RecordDiscard()                              {}
