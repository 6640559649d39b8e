package domain

import "fmt"

// Item is a selectable record returned by a search provider.
// Items are immutable once returned for a query.
type Item struct {
	ID    string `json:"id"`              // Stable unique identifier
	Label string `json:"label"`           // Display label
	Count int    `json:"count,omitempty"` // Optional annotation (0 = none)
}

// HasCount reports whether the item carries a count annotation
func (i Item) HasCount() bool {
	return i.Count > 0
}

// DisplayLabel returns the label with its count annotation, e.g. "bug (12)"
func (i Item) DisplayLabel() string {
	if !i.HasCount() {
		return i.Label
	}
	return fmt.Sprintf("%s (%d)", i.Label, i.Count)
}

// Page is one provider response: the items materialized for a query
// and the total number of matches the provider knows about.
type Page struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Truncated reports whether the provider matched more items than it returned
func (p Page) Truncated() bool {
	return p.Total > len(p.Items)
}

// IndexByID returns the items keyed by ID
func IndexByID(items []Item) map[string]Item {
	idx := make(map[string]Item, len(items))
	for _, item := range items {
		idx[item.ID] = item
	}
	return idx
}
