package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmcdole/sift/internal/domain"
)

// ReadItems decodes a catalog import. It accepts either a bare JSON array of
// items or an object with an "items" array, the same shape the HTTP search
// endpoint returns. Items without an id are rejected.
func ReadItems(r io.Reader) ([]domain.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	data = bytes.TrimSpace(data)

	var items []domain.Item
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &items)
	} else {
		var wrapped struct {
			Items []domain.Item `json:"items"`
		}
		err = json.Unmarshal(data, &wrapped)
		items = wrapped.Items
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}

	seen := make(map[string]bool, len(items))
	for i := range items {
		if items[i].ID == "" {
			return nil, fmt.Errorf("item %d has no id", i)
		}
		if seen[items[i].ID] {
			return nil, fmt.Errorf("duplicate item id %q", items[i].ID)
		}
		seen[items[i].ID] = true
		if items[i].Label == "" {
			items[i].Label = items[i].ID
		}
	}
	return items, nil
}
