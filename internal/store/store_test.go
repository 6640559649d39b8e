package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/sift/internal/domain"
)

func sampleItems() []domain.Item {
	return []domain.Item{
		{ID: "BUG", Label: "Bug", Count: 120},
		{ID: "STORY", Label: "Story", Count: 48},
		{ID: "EPIC", Label: "Epic"},
	}
}

func TestMemoryOnlyStore(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.GetItems("issue-types")
	assert.False(t, ok)

	require.NoError(t, s.SaveItems("issue-types", sampleItems()))

	items, ok := s.GetItems("issue-types")
	require.True(t, ok)
	assert.Equal(t, sampleItems(), items)

	names, err := s.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"issue-types"}, names)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveItems("labels", sampleItems()))
	require.NoError(t, s.SaveItems("assignees", []domain.Item{{ID: "u1", Label: "Ada"}}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	items, ok := s.GetItems("labels")
	require.True(t, ok)
	assert.Equal(t, sampleItems(), items)

	_, ok = s.UpdatedAt("labels")
	assert.True(t, ok)

	names, err := s.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"assignees", "labels"}, names)
}

func TestDeleteCollection(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveItems("labels", sampleItems()))
	require.NoError(t, s.Delete("labels"))

	_, ok := s.GetItems("labels")
	assert.False(t, ok)
	_, ok = s.UpdatedAt("labels")
	assert.False(t, ok)
}

func TestSaveEmptyCollection(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	require.NoError(t, s.SaveItems("empty", nil))
	items, ok := s.GetItems("empty")
	require.True(t, ok)
	assert.Empty(t, items)

	assert.Error(t, s.SaveItems("", sampleItems()))
}
