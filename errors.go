package vscroll

import "errors"

var (
	// ErrNoStrategy is returned when a viewport is created without a scroll
	// strategy.
	ErrNoStrategy = errors.New("vscroll: viewport requires a scroll strategy")
	// ErrStrategyAttached is returned when a strategy is attached to a second
	// viewport, or a viewport is initialized twice.
	ErrStrategyAttached = errors.New("vscroll: scroll strategy is already attached")
	// ErrAlreadyAttached is returned when a second repeater is attached to a
	// viewport.
	ErrAlreadyAttached = errors.New("vscroll: viewport is already attached")
	// ErrInvalidBuffer is returned for buffer sizes that are negative or where
	// the maximum buffer is smaller than the minimum buffer.
	ErrInvalidBuffer = errors.New("vscroll: maxBuffer must be greater than or equal to minBuffer")
	// ErrInvalidItemSize is returned for non-positive item sizes.
	ErrInvalidItemSize = errors.New("vscroll: item size must be positive")
	// ErrInvalidCacheSize is returned for negative template cache sizes.
	ErrInvalidCacheSize = errors.New("vscroll: template cache size must not be negative")
	// ErrNoViewport is returned when a repeater is created without a
	// viewport.
	ErrNoViewport = errors.New("vscroll: repeater requires a viewport")
	// ErrNoTemplate is returned when a repeater is created without a template.
	ErrNoTemplate = errors.New("vscroll: repeater requires an item template")
	// ErrRangeNotRendered is returned when measuring items that are not
	// currently rendered.
	ErrRangeNotRendered = errors.New("vscroll: attempted to measure an item that isn't rendered")
	// ErrDestroyed is returned by operations on a destroyed repeater or
	// viewport.
	ErrDestroyed = errors.New("vscroll: use after destroy")
)
