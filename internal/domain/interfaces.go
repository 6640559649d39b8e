package domain

import "context"

// SearchProvider answers queries for a selector. Implementations live in
// internal/adapter/provider.
type SearchProvider interface {
	// Search returns at most limit items matching query, plus the total match count.
	// The query is passed verbatim; ranking and query syntax are the provider's concern.
	// Failures wrap ErrProviderUnavailable or ErrProviderRejected.
	Search(ctx context.Context, query string, limit int) (Page, error)
}

// SearchProviderFunc adapts a function to SearchProvider
type SearchProviderFunc func(ctx context.Context, query string, limit int) (Page, error)

// Search calls f(ctx, query, limit)
func (f SearchProviderFunc) Search(ctx context.Context, query string, limit int) (Page, error) {
	return f(ctx, query, limit)
}

// CatalogStore persists named collections of items for local search.
type CatalogStore interface {
	GetItems(collection string) ([]Item, bool)
	SaveItems(collection string, items []Item) error
	Collections() ([]string, error)
	Delete(collection string) error
	Close() error
}
