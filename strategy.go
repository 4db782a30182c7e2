package vscroll

// ScrollHost is the part of a viewport a scroll strategy reads and writes.
// Strategies only change viewport state through the three setters, which is
// what allows the viewport to batch the resulting updates.
type ScrollHost interface {
	GetRenderedRange() Range
	GetDataLength() int
	GetViewportSize() float64
	MeasureScrollOffset(from Edge) float64

	SetTotalContentSize(size float64)
	SetRenderedRange(r Range)
	SetRenderedContentOffset(offset float64, to ContentEdge)

	ScrollToOffset(offset float64, behavior ScrollBehavior)
}

// VirtualScrollStrategy decides which range of items a viewport renders.
type VirtualScrollStrategy interface {
	// ScrolledIndexChange emits the index of the first visible item. The
	// stream is completed on Detach and replaced on the next Attach.
	ScrolledIndexChange() *Stream[int]

	// Attach binds the strategy to a viewport and computes the total content
	// size and the initial rendered range.
	Attach(host ScrollHost) error
	// Detach releases the viewport. Calling it more than once is a no-op.
	Detach()

	// OnContentScrolled is called after coalesced scroll events.
	OnContentScrolled()
	// OnDataLengthChanged is called when the number of items changes.
	OnDataLengthChanged()
	// OnContentRendered is called once rendered items have been updated.
	OnContentRendered()
	// OnRenderedOffsetChanged is called once the content offset was applied.
	OnRenderedOffsetChanged()

	// ScrollToIndex scrolls the viewport to the item at index.
	ScrollToIndex(index int, behavior ScrollBehavior)
}
