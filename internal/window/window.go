// Package window computes which slice of a large ordered collection must be
// materialized for a scrolled viewport.
//
// Extents are in whatever unit the rendering surface uses (pixels, rows).
// All functions are pure and clamp their inputs instead of failing, since
// scroll positions arrive from an environment this package does not control.
package window

import "math"

// Window is the half-open index range [Start, End) to materialize out of Total items
type Window struct {
	Start int
	End   int
	Total int
}

// Len returns the number of items in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// Empty reports whether nothing needs to be materialized
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// Contains reports whether index i falls inside the window
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// Offset returns the leading extent the surface must reserve before the first
// materialized item
func (w Window) Offset(itemExtent float64) float64 {
	return float64(w.Start) * itemExtent
}

// TrailingOffset returns the extent reserved after the last materialized item
func (w Window) TrailingOffset(itemExtent float64) float64 {
	return float64(w.Total-w.End) * itemExtent
}

// Compute returns the minimal window covering the viewport plus overscan items
// on each side.
func Compute(scrollOffset, viewportExtent, itemExtent float64, totalCount, overscan int) Window {
	if totalCount < 0 {
		totalCount = 0
	}
	if totalCount == 0 || !(itemExtent > 0) || math.IsInf(itemExtent, 0) {
		return Window{Total: totalCount}
	}
	overscan = min(max(overscan, 0), totalCount)
	if !(viewportExtent > 0) {
		viewportExtent = 0
	}

	scrollOffset = clampOffset(scrollOffset, float64(totalCount)*itemExtent)

	rawStart := int(math.Floor(scrollOffset / itemExtent))
	visible := ceilCount(viewportExtent/itemExtent, totalCount)
	rawEnd := rawStart + visible

	start := max(0, rawStart-overscan)
	end := min(totalCount, rawEnd+overscan)
	if start > end {
		start = end
	}

	return Window{Start: start, End: end, Total: totalCount}
}

// ScrollTo returns the scroll offset closest to scrollOffset that shows index
// fully inside the viewport. Out-of-range indexes are clamped.
func ScrollTo(index int, scrollOffset, viewportExtent, itemExtent float64, totalCount int) float64 {
	if totalCount <= 0 || !(itemExtent > 0) {
		return 0
	}
	index = min(max(index, 0), totalCount-1)
	if !(viewportExtent > 0) {
		viewportExtent = 0
	}

	maxOffset := math.Max(0, float64(totalCount)*itemExtent-viewportExtent)
	scrollOffset = clampOffset(scrollOffset, maxOffset)

	top := float64(index) * itemExtent
	bottom := top + itemExtent

	switch {
	case top < scrollOffset:
		scrollOffset = top
	case bottom > scrollOffset+viewportExtent:
		scrollOffset = bottom - viewportExtent
	}

	return clampOffset(scrollOffset, maxOffset)
}

// Slice returns the part of items covered by w, clamped to len(items).
// The provider may have materialized fewer items than w.Total.
func Slice[T any](items []T, w Window) []T {
	start := min(max(w.Start, 0), len(items))
	end := min(max(w.End, start), len(items))
	return items[start:end]
}

func clampOffset(offset, limit float64) float64 {
	if math.IsNaN(offset) || offset < 0 {
		return 0
	}
	if offset > limit {
		return limit
	}
	return offset
}

// ceilCount rounds n up, saturating at limit so huge viewports cannot overflow
func ceilCount(n float64, limit int) int {
	if math.IsInf(n, 0) || math.IsNaN(n) || n >= float64(limit) {
		return limit
	}
	return int(math.Ceil(n))
}
