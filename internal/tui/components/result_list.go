package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/tui/styles"
	"github.com/mmcdole/sift/internal/window"
)

// rowExtent is the height of one result row in terminal lines
const rowExtent = 1

// ResultList is a scrollable list of query results. Only the rows inside the
// current window are rendered.
type ResultList struct {
	items []domain.Item

	cursor   int
	offset   float64 // scroll offset in lines
	overscan int

	width  int
	height int
}

// NewResultList creates an empty list that renders overscan extra rows on
// each side of the viewport.
func NewResultList(overscan int) ResultList {
	return ResultList{overscan: overscan}
}

// SetSize updates the component dimensions
func (l *ResultList) SetSize(width, height int) {
	l.width = width
	l.height = max(height, 0)
	l.offset = window.ScrollTo(l.cursor, l.offset, l.viewport(), rowExtent, len(l.items))
}

// SetItems replaces the list contents. The cursor returns to the top when
// reset is true and is clamped into range otherwise.
func (l *ResultList) SetItems(items []domain.Item, reset bool) {
	l.items = items
	if reset {
		l.cursor = 0
		l.offset = 0
	}
	l.clampCursor()
}

// Items returns the current list contents
func (l ResultList) Items() []domain.Item {
	return l.items
}

// Len returns the number of items
func (l ResultList) Len() int {
	return len(l.items)
}

// Cursor returns the focused row index
func (l ResultList) Cursor() int {
	return l.cursor
}

// Offset returns the scroll offset in lines
func (l ResultList) Offset() float64 {
	return l.offset
}

// Focused returns the item under the cursor
func (l ResultList) Focused() (domain.Item, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.Item{}, false
	}
	return l.items[l.cursor], true
}

// MoveCursor moves the cursor by delta rows and scrolls it into view
func (l *ResultList) MoveCursor(delta int) {
	l.cursor += delta
	l.clampCursor()
}

// PageDown moves the cursor one viewport down
func (l *ResultList) PageDown() {
	l.MoveCursor(max(l.height, 1))
}

// PageUp moves the cursor one viewport up
func (l *ResultList) PageUp() {
	l.MoveCursor(-max(l.height, 1))
}

// Window returns the rows to materialize for the current scroll position
func (l ResultList) Window() window.Window {
	return window.Compute(l.offset, l.viewport(), rowExtent, len(l.items), l.overscan)
}

func (l *ResultList) clampCursor() {
	if len(l.items) == 0 {
		l.cursor = 0
		l.offset = 0
		return
	}
	l.cursor = min(max(l.cursor, 0), len(l.items)-1)
	l.offset = window.ScrollTo(l.cursor, l.offset, l.viewport(), rowExtent, len(l.items))
}

func (l ResultList) viewport() float64 {
	return float64(l.height * rowExtent)
}

// View renders the visible rows. isSelected marks chosen items and marker
// controls whether selection markers are drawn at all.
func (l ResultList) View(isSelected func(id string) bool, marker bool) string {
	if l.height <= 0 {
		return ""
	}

	win := l.Window()
	rows := window.Slice(l.items, win)

	first := int(l.offset) / rowExtent
	last := first + l.height

	lines := make([]string, 0, l.height)
	for i, item := range rows {
		idx := win.Start + i
		if idx < first || idx >= last {
			continue // overscan
		}
		lines = append(lines, l.renderRow(item, idx == l.cursor, isSelected(item.ID), marker))
	}

	// Reserve the full height to prevent layout shifts
	for len(lines) < l.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (l ResultList) renderRow(item domain.Item, focused, selected, marker bool) string {
	var parts []styles.RowPart

	if marker {
		char := styles.UnselectedChar
		fg := styles.DimGray
		if selected {
			char = styles.SelectedChar
			fg = styles.Accent
		}
		parts = append(parts, styles.RowPart{Text: char + " ", Foreground: &fg})
	}

	labelWidth := max(l.width-2-lipgloss.Width(joinText(parts)), 1)
	label := styles.Truncate(item.DisplayLabel(), labelWidth)
	if selected && !marker {
		fg := styles.Accent
		parts = append(parts, styles.RowPart{Text: label, Foreground: &fg})
	} else {
		parts = append(parts, styles.RowPart{Text: label})
	}

	return styles.RenderListRow(parts, focused, l.width)
}

func joinText(parts []styles.RowPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
