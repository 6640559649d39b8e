package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/sift/internal/domain"
)

func TestReadItemsArray(t *testing.T) {
	items, err := ReadItems(strings.NewReader(`  [{"id":"BUG","label":"Bug","count":3},{"id":"EPIC"}]`))
	require.NoError(t, err)

	assert.Equal(t, []domain.Item{
		{ID: "BUG", Label: "Bug", Count: 3},
		{ID: "EPIC", Label: "EPIC"},
	}, items)
}

func TestReadItemsWrapped(t *testing.T) {
	items, err := ReadItems(strings.NewReader(`{"items":[{"id":"1","label":"Ada"}],"total":1}`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Item{{ID: "1", Label: "Ada"}}, items)
}

func TestReadItemsErrors(t *testing.T) {
	for name, input := range map[string]string{
		"malformed":    `[{"id":`,
		"missing id":   `[{"label":"x"}]`,
		"duplicate id": `[{"id":"a"},{"id":"a"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadItems(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
