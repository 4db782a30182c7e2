package vscroll

// Size is the size of a viewport in cells.
type Size struct {
	Width  int
	Height int
}

// Position is a scroll position measured from the top-left corner of the
// scrollable content.
type Position struct {
	Top  float64
	Left float64
}

// ViewportMetrics measures a scroll container. Implementations return zero
// values while the container has not been laid out yet.
type ViewportMetrics interface {
	ViewportSize() Size
	ScrollPosition() Position
}

// boxMetrics measures a viewport through its own box and scroll state.
type boxMetrics struct {
	viewport *Viewport
}

func (m boxMetrics) ViewportSize() Size {
	v := m.viewport
	if !v.laidOut {
		return Size{}
	}
	_, _, width, height := v.GetInnerRect()
	return Size{Width: width, Height: height}
}

func (m boxMetrics) ScrollPosition() Position {
	v := m.viewport
	if v.orientation == OrientationVertical {
		return Position{Top: v.scrollOffset}
	}
	// Horizontal offsets are kept relative to the start edge; in RTL the start
	// edge is on the right.
	left := v.scrollOffset
	if v.direction == DirectionRTL {
		left = max(v.totalContentSize-v.viewportSize, 0) - v.scrollOffset
	}
	return Position{Left: left}
}
