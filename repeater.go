package vscroll

import (
	"fmt"
	"log/slog"
)

// ItemContext is the data an item view is bound to.
type ItemContext[T any] struct {
	Item T
	// Index is the index of Item in the data.
	Index int
	// Count is the number of items in the data.
	Count int
}

func (c ItemContext[T]) First() bool { return c.Index == 0 }
func (c ItemContext[T]) Last() bool  { return c.Index == c.Count-1 }
func (c ItemContext[T]) Even() bool  { return c.Index%2 == 0 }
func (c ItemContext[T]) Odd() bool   { return !c.Even() }

// ItemView is a view rendering one item.
type ItemView[T any] interface {
	Primitive
	// Update binds the view to ctx. It is called after every reconciliation.
	Update(ctx ItemContext[T])
	// Size returns the extent of the view along the scroll axis given the
	// space available across it.
	Size(orientation Orientation, cross int) int
}

// TemplateFunc creates a new item view.
type TemplateFunc[T any] func() ItemView[T]

// TrackByFunc maps an item to the identity used to match it across data
// snapshots.
type TrackByFunc[T any] func(index int, item T) any

// TemplateSelector picks the name of the template for an item.
type TemplateSelector[T any] func(index int, item T) string

const defaultTemplateCacheSize = 20

// RepeaterOption configures a Repeater.
type RepeaterOption[T any] func(*Repeater[T])

// WithTrackBy sets the identity of items. By default items are matched by
// value.
func WithTrackBy[T any](trackBy TrackByFunc[T]) RepeaterOption[T] {
	return func(r *Repeater[T]) {
		r.trackBy = trackBy
	}
}

// WithTemplateCacheSize sets how many detached views are kept for reuse.
// Zero disables reuse.
func WithTemplateCacheSize[T any](size int) RepeaterOption[T] {
	return func(r *Repeater[T]) {
		r.cacheSize = size
	}
}

// WithTemplateSelector renders items with one of several named templates.
// Items for which selector returns an unknown name use the default template.
func WithTemplateSelector[T any](selector TemplateSelector[T], templates map[string]TemplateFunc[T]) RepeaterOption[T] {
	return func(r *Repeater[T]) {
		r.selector = selector
		r.templates = templates
	}
}

// WithRepeaterLogger sets the logger of the repeater.
func WithRepeaterLogger[T any](logger *slog.Logger) RepeaterOption[T] {
	return func(r *Repeater[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type repeaterState uint8

const (
	repeaterUnattached repeaterState = iota
	repeaterAttached
	repeaterDestroying
	repeaterDestroyed
)

func (s repeaterState) String() string {
	switch s {
	case repeaterUnattached:
		return "unattached"
	case repeaterAttached:
		return "attached"
	case repeaterDestroying:
		return "destroying"
	default:
		return "destroyed"
	}
}

type renderedRow[T any] struct {
	view     ItemView[T]
	template string
	item     T
	record
}

// RepeaterStats counts the view operations of a repeater.
type RepeaterStats struct {
	// Created views from a template.
	Created int
	// Reused views from the cache of detached views.
	Reused int
	// Cached views after they were removed.
	Cached int
	// Destroyed views.
	Destroyed int
	// Moved views to another index.
	Moved int
}

// Repeater renders the items of a viewport's rendered range as recycled
// item views.
//
// The repeater joins the latest data snapshot with the latest rendered range
// and reconciles its views when the viewport flushes. Views of removed items
// are cached for reuse by inserted items.
type Repeater[T any] struct {
	viewport  *Viewport
	template  TemplateFunc[T]
	templates map[string]TemplateFunc[T]
	selector  TemplateSelector[T]
	trackBy   TrackByFunc[T]
	cacheSize int
	cache     *viewCache[T]
	logger    *slog.Logger

	state repeaterState

	source     DataSource[T]
	stopSource func()
	stopRange  func()

	dataStream *Stream[[]T]
	dataLength *Stream[int]
	viewChange *Stream[Range]

	data          []T
	renderedRange Range
	needsUpdate   bool

	rows           []*renderedRow[T]
	committedRange Range
	stats          RepeaterStats
}

// NewRepeater returns a repeater rendering items of viewport with template
// and attaches it to viewport.
func NewRepeater[T any](viewport *Viewport, template TemplateFunc[T], opts ...RepeaterOption[T]) (*Repeater[T], error) {
	if viewport == nil {
		return nil, ErrNoViewport
	}
	if template == nil {
		return nil, ErrNoTemplate
	}

	r := &Repeater[T]{
		viewport:   viewport,
		template:   template,
		cacheSize:  defaultTemplateCacheSize,
		logger:     viewport.logger,
		dataStream: NewReplayStream[[]T](),
		dataLength: NewReplayStream[int](),
		viewChange: NewReplayStream[Range]().Distinct(rangesEqual),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheSize < 0 {
		return nil, fmt.Errorf("template cache size %d: %w", r.cacheSize, ErrInvalidCacheSize)
	}

	cache, err := newViewCache[T](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create view cache: %w", err)
	}
	r.cache = cache

	if err := viewport.Attach(r); err != nil {
		return nil, fmt.Errorf("attach repeater: %w", err)
	}
	r.stopRange = viewport.RenderedRangeStream().Subscribe(func(rng Range) {
		r.renderedRange = rng
		r.needsUpdate = true
		r.viewChange.Emit(rng)
	})
	r.setState(repeaterAttached)
	return r, nil
}

func (r *Repeater[T]) setState(state repeaterState) {
	r.logger.Debug("repeater state changed", "from", r.state.String(), "to", state.String())
	r.state = state
}

// SetData renders a fixed slice.
func (r *Repeater[T]) SetData(items []T) error {
	return r.SetDataSource(NewArrayDataSource(items))
}

// SetStream renders the snapshots emitted by stream.
func (r *Repeater[T]) SetStream(stream *Stream[[]T]) error {
	return r.SetDataSource(NewStreamDataSource(stream))
}

// SetDataSource switches to source. The previous source is disconnected.
func (r *Repeater[T]) SetDataSource(source DataSource[T]) error {
	if r.state != repeaterAttached {
		return ErrDestroyed
	}
	r.disconnect()
	r.source = source
	if source != nil {
		r.stopSource = source.Connect(r).Subscribe(r.onData)
	}
	return nil
}

func (r *Repeater[T]) disconnect() {
	if r.stopSource != nil {
		r.stopSource()
		r.stopSource = nil
	}
	if r.source != nil {
		r.source.Disconnect(r)
		r.source = nil
	}
}

func (r *Repeater[T]) onData(items []T) {
	if r.state != repeaterAttached {
		return
	}
	r.data = items
	r.needsUpdate = true
	r.dataStream.Emit(items)
	r.dataLength.Emit(len(items))
}

// DataStream emits every data snapshot and replays the latest one.
func (r *Repeater[T]) DataStream() *Stream[[]T] {
	return r.dataStream
}

// DataLength implements ViewRepeater.
func (r *Repeater[T]) DataLength() *Stream[int] {
	return r.dataLength
}

// ViewChange implements CollectionViewer.
func (r *Repeater[T]) ViewChange() *Stream[Range] {
	return r.viewChange
}

// Stats returns the view operations performed so far.
func (r *Repeater[T]) Stats() RepeaterStats {
	stats := r.stats
	stats.Destroyed += r.cache.destroyed
	return stats
}

// CachedViews returns the number of detached views kept for reuse.
func (r *Repeater[T]) CachedViews() int {
	return r.cache.len()
}

// RenderedRange returns the range of the rendered views.
func (r *Repeater[T]) RenderedRange() Range {
	return r.committedRange
}

// RenderedViews implements ViewRepeater.
func (r *Repeater[T]) RenderedViews() []RenderedView {
	orientation := r.viewport.orientation
	cross := r.viewport.crossSize()
	views := make([]RenderedView, len(r.rows))
	for i, row := range r.rows {
		views[i] = RenderedView{View: row.view, Size: row.view.Size(orientation, cross)}
	}
	return views
}

// MeasureRangeSize implements ViewRepeater. It fails with
// ErrRangeNotRendered if rng is not within the rendered range.
func (r *Repeater[T]) MeasureRangeSize(rng Range, orientation Orientation) (float64, error) {
	if r.state != repeaterAttached {
		return 0, ErrDestroyed
	}
	if rng.Len() == 0 {
		return 0, nil
	}
	if !r.committedRange.ContainsRange(rng) {
		return 0, fmt.Errorf("measure %s with %s rendered: %w", rng, r.committedRange, ErrRangeNotRendered)
	}

	cross := r.viewport.crossSize()
	size := 0
	for _, row := range r.rows[rng.Start-r.committedRange.Start : rng.End-r.committedRange.Start] {
		size += row.view.Size(orientation, cross)
	}
	return float64(size), nil
}

// Sync implements ViewRepeater. It reconciles the rendered views with the
// latest data snapshot and rendered range.
func (r *Repeater[T]) Sync() {
	if r.state != repeaterAttached || !r.needsUpdate {
		return
	}
	r.needsUpdate = false

	rng := r.renderedRange.Clamp(len(r.data))
	next := make([]record, rng.Len())
	for i := range next {
		index := rng.Start + i
		next[i] = record{index: index, key: identityKey(r.trackBy, index, r.data[index])}
	}
	prev := make([]record, len(r.rows))
	for i, row := range r.rows {
		prev[i] = row.record
	}

	sources, removed, changes := diffRecords(prev, next)

	for _, i := range removed {
		r.release(r.rows[i])
	}

	rows := make([]*renderedRow[T], len(next))
	for j, rec := range next {
		item := r.data[rec.index]
		template := r.templateName(rec.index, item)

		if i := sources[j]; i >= 0 {
			row := r.rows[i]
			if row.template == template {
				row.record = rec
				row.item = item
				rows[j] = row
				continue
			}
			r.release(row)
		}
		rows[j] = &renderedRow[T]{
			view:     r.acquire(template),
			template: template,
			item:     item,
			record:   rec,
		}
	}
	r.rows = rows
	r.committedRange = rng
	r.stats.Moved += changes.Moved

	count := len(r.data)
	for _, row := range r.rows {
		row.view.Update(ItemContext[T]{Item: row.item, Index: row.index, Count: count})
	}

	if changes.Inserted > 0 || changes.Removed > 0 || changes.Moved > 0 {
		r.logger.Debug("repeater synced",
			"range", rng.String(),
			"inserted", changes.Inserted,
			"removed", changes.Removed,
			"moved", changes.Moved,
		)
	}
}

func (r *Repeater[T]) templateName(index int, item T) string {
	if r.selector == nil {
		return ""
	}
	name := r.selector(index, item)
	if _, ok := r.templates[name]; !ok {
		return ""
	}
	return name
}

func (r *Repeater[T]) acquire(template string) ItemView[T] {
	if view, ok := r.cache.take(template); ok {
		r.stats.Reused++
		return view
	}
	r.stats.Created++
	if template == "" {
		return r.template()
	}
	return r.templates[template]()
}

func (r *Repeater[T]) release(row *renderedRow[T]) {
	if r.cache.put(row.template, row.view) {
		r.stats.Cached++
	}
}

// Destroy detaches the repeater from its viewport and data source and
// destroys all views. Further calls return ErrDestroyed.
func (r *Repeater[T]) Destroy() error {
	if r.state == repeaterDestroying || r.state == repeaterDestroyed {
		return ErrDestroyed
	}
	r.setState(repeaterDestroying)

	if r.stopRange != nil {
		r.stopRange()
		r.stopRange = nil
	}
	r.disconnect()
	if r.viewport.repeater == ViewRepeater(r) {
		r.viewport.Detach()
	}

	r.dataStream.Complete()
	r.dataLength.Complete()
	r.viewChange.Complete()

	for _, row := range r.rows {
		destroyView(row.view)
	}
	r.stats.Destroyed += len(r.rows)
	r.rows = nil
	r.cache.purge()

	r.setState(repeaterDestroyed)
	return nil
}

var (
	_ ViewRepeater     = &Repeater[int]{}
	_ CollectionViewer = &Repeater[int]{}
)
