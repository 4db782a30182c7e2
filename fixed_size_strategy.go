package vscroll

import (
	"fmt"
	"math"
)

// FixedSizeStrategy is a VirtualScrollStrategy for items of equal size.
//
// The rendered range is only recomputed once fewer than minBuffer cells of
// rendered content remain beyond an edge of the viewport, and then it is
// extended so that maxBuffer cells are rendered beyond that edge. Scrolling
// within the buffer does not change the range.
type FixedSizeStrategy struct {
	viewport ScrollHost

	itemSize  float64
	minBuffer float64
	maxBuffer float64

	scrolledIndexChange *Stream[int]
}

// NewFixedSizeStrategy returns a strategy for items of itemSize cells.
func NewFixedSizeStrategy(itemSize, minBuffer, maxBuffer float64) (*FixedSizeStrategy, error) {
	if err := validateFixedSizes(itemSize, minBuffer, maxBuffer); err != nil {
		return nil, err
	}
	return &FixedSizeStrategy{
		itemSize:            itemSize,
		minBuffer:           minBuffer,
		maxBuffer:           maxBuffer,
		scrolledIndexChange: newIndexStream(),
	}, nil
}

func validateFixedSizes(itemSize, minBuffer, maxBuffer float64) error {
	if !(itemSize > 0) || math.IsInf(itemSize, 0) {
		return fmt.Errorf("item size %v: %w", itemSize, ErrInvalidItemSize)
	}
	if minBuffer < 0 || maxBuffer < 0 || math.IsNaN(minBuffer) || math.IsNaN(maxBuffer) {
		return fmt.Errorf("buffer sizes %v/%v must not be negative: %w", minBuffer, maxBuffer, ErrInvalidBuffer)
	}
	if maxBuffer < minBuffer {
		return fmt.Errorf("maxBuffer %v < minBuffer %v: %w", maxBuffer, minBuffer, ErrInvalidBuffer)
	}
	return nil
}

func newIndexStream() *Stream[int] {
	return NewStream[int]().Distinct(func(a, b int) bool { return a == b })
}

// ItemSize returns the size of one item in cells.
func (s *FixedSizeStrategy) ItemSize() float64 {
	return s.itemSize
}

// Buffers returns the minimum and maximum buffer sizes.
func (s *FixedSizeStrategy) Buffers() (minBuffer, maxBuffer float64) {
	return s.minBuffer, s.maxBuffer
}

// ScrolledIndexChange implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) ScrolledIndexChange() *Stream[int] {
	return s.scrolledIndexChange
}

// Attach implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) Attach(host ScrollHost) error {
	if s.viewport != nil && s.viewport != host {
		return ErrStrategyAttached
	}
	if s.scrolledIndexChange.Completed() {
		s.scrolledIndexChange = newIndexStream()
	}
	s.viewport = host
	s.updateTotalContentSize()
	s.updateRenderedRange()
	return nil
}

// Detach implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) Detach() {
	s.scrolledIndexChange.Complete()
	s.viewport = nil
}

// UpdateItemAndBufferSize changes the item and buffer sizes and recomputes
// the rendered range of the attached viewport.
func (s *FixedSizeStrategy) UpdateItemAndBufferSize(itemSize, minBuffer, maxBuffer float64) error {
	if err := validateFixedSizes(itemSize, minBuffer, maxBuffer); err != nil {
		return err
	}
	s.itemSize = itemSize
	s.minBuffer = minBuffer
	s.maxBuffer = maxBuffer
	s.updateTotalContentSize()
	s.updateRenderedRange()
	return nil
}

// OnContentScrolled implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) OnContentScrolled() {
	s.updateRenderedRange()
}

// OnDataLengthChanged implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) OnDataLengthChanged() {
	s.updateTotalContentSize()
	s.updateRenderedRange()
}

// OnContentRendered implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) OnContentRendered() {}

// OnRenderedOffsetChanged implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) OnRenderedOffsetChanged() {}

// ScrollToIndex implements VirtualScrollStrategy.
func (s *FixedSizeStrategy) ScrollToIndex(index int, behavior ScrollBehavior) {
	if s.viewport == nil {
		return
	}
	s.viewport.ScrollToOffset(float64(index)*s.itemSize, behavior)
}

func (s *FixedSizeStrategy) updateTotalContentSize() {
	if s.viewport == nil {
		return
	}
	s.viewport.SetTotalContentSize(float64(s.viewport.GetDataLength()) * s.itemSize)
}

func (s *FixedSizeStrategy) updateRenderedRange() {
	if s.viewport == nil {
		return
	}

	newRange := s.viewport.GetRenderedRange()
	viewportSize := s.viewport.GetViewportSize()
	dataLength := s.viewport.GetDataLength()
	scrollOffset := s.viewport.MeasureScrollOffset(EdgeStart)
	firstVisibleIndex := scrollOffset / s.itemSize

	// The data shrank below the rendered range: pull the window back so that
	// it ends at the last item.
	if newRange.End > dataLength {
		maxVisibleItems := int(math.Ceil(viewportSize / s.itemSize))
		newVisibleIndex := math.Max(0, math.Min(firstVisibleIndex, float64(dataLength-maxVisibleItems)))
		if firstVisibleIndex != newVisibleIndex {
			firstVisibleIndex = newVisibleIndex
			scrollOffset = newVisibleIndex * s.itemSize
			newRange.Start = int(math.Floor(firstVisibleIndex))
		}
		newRange.End = max(0, min(dataLength, newRange.Start+maxVisibleItems))
	}

	startBuffer := scrollOffset - float64(newRange.Start)*s.itemSize
	if startBuffer < s.minBuffer && newRange.Start != 0 {
		expandStart := int(math.Ceil((s.maxBuffer - startBuffer) / s.itemSize))
		newRange.Start = max(0, newRange.Start-expandStart)
		newRange.End = min(dataLength, int(math.Ceil(firstVisibleIndex+(viewportSize+s.minBuffer)/s.itemSize)))
	} else {
		endBuffer := float64(newRange.End)*s.itemSize - (scrollOffset + viewportSize)
		if endBuffer < s.minBuffer && newRange.End != dataLength {
			expandEnd := int(math.Ceil((s.maxBuffer - endBuffer) / s.itemSize))
			if expandEnd > 0 {
				newRange.End = min(dataLength, newRange.End+expandEnd)
				newRange.Start = max(0, int(math.Floor(firstVisibleIndex-s.minBuffer/s.itemSize)))
			}
		}
	}
	newRange.Start = min(newRange.Start, newRange.End)

	s.viewport.SetRenderedRange(newRange)
	s.viewport.SetRenderedContentOffset(s.itemSize*float64(newRange.Start), ToStart)
	s.scrolledIndexChange.Emit(int(math.Floor(firstVisibleIndex)))
}

var _ VirtualScrollStrategy = &FixedSizeStrategy{}
