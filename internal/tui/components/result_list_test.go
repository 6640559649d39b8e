package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/sift/internal/domain"
)

func numbered(n int) []domain.Item {
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{ID: fmt.Sprint(i), Label: fmt.Sprintf("item-%03d", i)}
	}
	return items
}

func none(string) bool { return false }

func TestResultListScrollsCursorIntoView(t *testing.T) {
	l := NewResultList(2)
	l.SetSize(40, 5)
	l.SetItems(numbered(100), true)

	l.MoveCursor(4)
	assert.Equal(t, 0.0, l.Offset())

	l.MoveCursor(1)
	assert.Equal(t, 5, l.Cursor())
	assert.Equal(t, 1.0, l.Offset())

	l.PageDown()
	assert.Equal(t, 10, l.Cursor())
	assert.Equal(t, 6.0, l.Offset())

	l.MoveCursor(-8)
	assert.Equal(t, 2.0, l.Offset())

	l.MoveCursor(1000)
	assert.Equal(t, 99, l.Cursor())
	assert.Equal(t, 95.0, l.Offset())

	l.MoveCursor(-1000)
	assert.Equal(t, 0, l.Cursor())
	assert.Equal(t, 0.0, l.Offset())
}

func TestResultListWindowIncludesOverscan(t *testing.T) {
	l := NewResultList(2)
	l.SetSize(40, 5)
	l.SetItems(numbered(100), true)
	l.MoveCursor(20)

	win := l.Window()
	assert.Equal(t, 14, win.Start)
	assert.Equal(t, 23, win.End)
}

func TestResultListRendersOnlyViewport(t *testing.T) {
	l := NewResultList(3)
	l.SetSize(40, 4)
	l.SetItems(numbered(50), true)
	l.MoveCursor(10)

	view := l.View(none, false)
	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, view, "item-007")
	assert.Contains(t, view, "item-010")
	assert.NotContains(t, view, "item-006")
	assert.NotContains(t, view, "item-011")
}

func TestResultListMarkers(t *testing.T) {
	l := NewResultList(0)
	l.SetSize(40, 3)
	l.SetItems([]domain.Item{{ID: "a", Label: "Bug", Count: 12}, {ID: "b", Label: "Story"}}, true)

	view := l.View(func(id string) bool { return id == "a" }, true)
	assert.Contains(t, view, "● Bug (12)")
	assert.Contains(t, view, "○ Story")
	assert.Len(t, strings.Split(view, "\n"), 3, "pads to full height")
}

func TestResultListEmpty(t *testing.T) {
	l := NewResultList(2)
	l.SetSize(40, 3)
	l.SetItems(nil, true)

	_, ok := l.Focused()
	assert.False(t, ok)
	l.MoveCursor(3)
	assert.Equal(t, 0, l.Cursor())
	assert.True(t, l.Window().Empty())
}

func TestSelectionBarCollapsesOverflow(t *testing.T) {
	var b SelectionBar
	assert.Contains(t, b.View(nil), "nothing selected")

	b.SetWidth(30)
	view := b.View([]string{"alpha", "beta", "gamma", "delta", "epsilon"})
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "more")
	assert.NotContains(t, view, "epsilon")
}
