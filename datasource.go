package vscroll

import (
	"context"
	"sync"
)

// CollectionViewer is a consumer of a DataSource which publishes the range
// of items it currently displays.
type CollectionViewer interface {
	ViewChange() *Stream[Range]
}

// DataSource provides snapshots of the data to a CollectionViewer.
type DataSource[T any] interface {
	// Connect returns the stream of snapshots for viewer.
	Connect(viewer CollectionViewer) *Stream[[]T]
	// Disconnect is called once viewer no longer reads from the source.
	Disconnect(viewer CollectionViewer)
}

// ArrayDataSource serves a fixed slice.
type ArrayDataSource[T any] struct {
	stream *Stream[[]T]
}

// NewArrayDataSource returns a data source which emits items once.
func NewArrayDataSource[T any](items []T) *ArrayDataSource[T] {
	stream := NewReplayStream[[]T]()
	stream.Emit(items)
	return &ArrayDataSource[T]{stream: stream}
}

func (s *ArrayDataSource[T]) Connect(CollectionViewer) *Stream[[]T] {
	return s.stream
}

func (s *ArrayDataSource[T]) Disconnect(CollectionViewer) {}

// StreamDataSource serves the snapshots of a stream.
type StreamDataSource[T any] struct {
	stream *Stream[[]T]
}

// NewStreamDataSource returns a data source backed by stream. The stream
// must emit on the goroutine that owns the viewport.
func NewStreamDataSource[T any](stream *Stream[[]T]) *StreamDataSource[T] {
	return &StreamDataSource[T]{stream: stream}
}

func (s *StreamDataSource[T]) Connect(CollectionViewer) *Stream[[]T] {
	return s.stream
}

func (s *StreamDataSource[T]) Disconnect(CollectionViewer) {}

// PageFetcher loads the items of one page.
type PageFetcher[T any] func(ctx context.Context, page int) ([]T, error)

// PagedDataSource serves a list of known length whose items are loaded page
// by page as the viewer's range reaches them. Items of pages which have not
// been loaded are zero values.
//
// Every emitted slice shares one backing array. A page is written into it
// once, on the goroutine that flushes the scheduler, and the slice is
// emitted again so that viewers pick up the new items.
type PagedDataSource[T any] struct {
	length    int
	pageSize  int
	fetch     PageFetcher[T]
	scheduler *Scheduler
	onError   func(page int, err error)

	items  []T
	loaded map[int]bool
	stream *Stream[[]T]

	// mu guards requested, which fetch goroutines clear on failure.
	mu        sync.Mutex
	requested map[int]bool

	ctx    context.Context
	cancel context.CancelFunc
	stop   func()
}

// NewPagedDataSource returns a data source of length items. Fetched pages
// are merged on the goroutine that flushes scheduler.
func NewPagedDataSource[T any](length, pageSize int, fetch PageFetcher[T], scheduler *Scheduler) *PagedDataSource[T] {
	return &PagedDataSource[T]{
		length:    max(length, 0),
		pageSize:  max(pageSize, 1),
		fetch:     fetch,
		scheduler: scheduler,
		items:     make([]T, max(length, 0)),
		loaded:    make(map[int]bool),
		requested: make(map[int]bool),
	}
}

// SetErrorFunc sets a function called when a page fails to load. Failed
// pages are fetched again the next time the range reaches them.
func (s *PagedDataSource[T]) SetErrorFunc(onError func(page int, err error)) *PagedDataSource[T] {
	s.onError = onError
	return s
}

// Connect starts serving viewer. Pages which were still loading when the
// source was last disconnected are requested again.
func (s *PagedDataSource[T]) Connect(viewer CollectionViewer) *Stream[[]T] {
	s.mu.Lock()
	s.requested = make(map[int]bool, len(s.loaded))
	for page := range s.loaded {
		s.requested[page] = true
	}
	s.mu.Unlock()

	s.stream = NewReplayStream[[]T]()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.stop = viewer.ViewChange().Subscribe(s.onViewChange)
	s.stream.Emit(s.snapshot())
	return s.stream
}

func (s *PagedDataSource[T]) Disconnect(CollectionViewer) {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.stream != nil {
		s.stream.Complete()
	}
}

func (s *PagedDataSource[T]) onViewChange(r Range) {
	r = r.Clamp(s.length)
	if r.Len() == 0 {
		return
	}
	first, last := r.Start/s.pageSize, (r.End-1)/s.pageSize
	for page := first; page <= last; page++ {
		s.fetchPage(page)
	}
}

func (s *PagedDataSource[T]) fetchPage(page int) {
	s.mu.Lock()
	if s.requested[page] {
		s.mu.Unlock()
		return
	}
	s.requested[page] = true
	s.mu.Unlock()

	ctx := s.ctx
	go func() {
		items, err := s.fetch(ctx, page)
		if ctx.Err() != nil {
			return
		}
		s.scheduler.Post(func() {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.mu.Lock()
				delete(s.requested, page)
				s.mu.Unlock()
				if s.onError != nil {
					s.onError(page, err)
				}
				return
			}
			s.merge(page, items)
		})
	}()
}

func (s *PagedDataSource[T]) merge(page int, items []T) {
	start := page * s.pageSize
	for i, item := range items {
		if start+i >= s.length || i >= s.pageSize {
			break
		}
		s.items[start+i] = item
	}
	s.loaded[page] = true
	s.stream.Emit(s.snapshot())
}

// snapshot returns the shared items with their capacity capped, so that an
// append by a viewer never writes into them.
func (s *PagedDataSource[T]) snapshot() []T {
	return s.items[:len(s.items):len(s.items)]
}

var (
	_ DataSource[int] = &ArrayDataSource[int]{}
	_ DataSource[int] = &StreamDataSource[int]{}
	_ DataSource[int] = &PagedDataSource[int]{}
)
