// Package catalog answers searches from a locally stored collection of items.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/sift/internal/domain"
)

// Provider implements domain.SearchProvider over one collection of a
// domain.CatalogStore.
type Provider struct {
	store      domain.CatalogStore
	collection string
	logger     *slog.Logger
}

// NewProvider creates a provider searching collection in store
func NewProvider(store domain.CatalogStore, collection string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		store:      store,
		collection: collection,
		logger:     logger,
	}
}

// Search ranks the collection against query. An empty query lists the
// collection in stored order.
func (p *Provider) Search(ctx context.Context, query string, limit int) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	items, ok := p.store.GetItems(p.collection)
	if !ok {
		return domain.Page{}, fmt.Errorf("collection %q not found: %w", p.collection, domain.ErrProviderRejected)
	}

	matched := items
	if q := strings.TrimSpace(query); q != "" {
		matched = rank(q, items)
	}

	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	total := len(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]domain.Item, len(matched))
	copy(out, matched)

	p.logger.Debug("catalog search", "collection", p.collection, "query", query, "total", total, "returned", len(out))
	return domain.Page{Items: out, Total: total}, nil
}

// labelIndex implements sahilm/fuzzy.Source over pre-lowered labels
type labelIndex []string

// String returns the lowercase label at index i (implements fuzzy.Source)
func (idx labelIndex) String(i int) string { return idx[i] }

// Len returns the number of labels (implements fuzzy.Source)
func (idx labelIndex) Len() int { return len(idx) }

// rank orders items by subsequence match quality, falling back to
// typo-tolerant word matching when nothing matches as a subsequence.
func rank(query string, items []domain.Item) []domain.Item {
	query = strings.ToLower(query)
	labels := make(labelIndex, len(items))
	for i, item := range items {
		labels[i] = strings.ToLower(item.Label)
	}

	matches := fuzzy.FindFrom(query, labels)
	if len(matches) > 0 {
		out := make([]domain.Item, len(matches))
		for i, m := range matches {
			out[i] = items[m.Index]
		}
		return out
	}

	return typoMatches(query, labels, items)
}

func typoMatches(query string, labels labelIndex, items []domain.Item) []domain.Item {
	maxTypos := allowedTypos(utf8.RuneCountInString(query))
	if maxTypos == 0 {
		return nil
	}

	type candidate struct {
		index    int
		distance int
	}

	var candidates []candidate
	for i, label := range labels {
		best := -1
		for _, word := range strings.Fields(label) {
			d := lfuzzy.LevenshteinDistance(query, word)
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= maxTypos {
			candidates = append(candidates, candidate{index: i, distance: best})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]domain.Item, len(candidates))
	for i, c := range candidates {
		out[i] = items[c.index]
	}
	return out
}

// allowedTypos returns the number of typos allowed based on word length
// 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

var _ domain.SearchProvider = (*Provider)(nil)
