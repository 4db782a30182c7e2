package vscroll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testView[T any] struct {
	*Box
	kind      string
	ctx       ItemContext[T]
	updates   int
	destroyed bool
}

func (v *testView[T]) Update(ctx ItemContext[T]) {
	v.ctx = ctx
	v.updates++
}

func (v *testView[T]) Size(Orientation, int) int { return 1 }

func (v *testView[T]) Destroy() { v.destroyed = true }

// testTemplate returns a template which records every view it creates.
func testTemplate[T any](kind string, created *[]*testView[T]) TemplateFunc[T] {
	return func() ItemView[T] {
		view := &testView[T]{Box: NewBox(), kind: kind}
		*created = append(*created, view)
		return view
	}
}

func renderedTestViews[T any](t *testing.T, r *Repeater[T]) []*testView[T] {
	t.Helper()
	var views []*testView[T]
	for _, rendered := range r.RenderedViews() {
		view, ok := rendered.View.(*testView[T])
		require.True(t, ok)
		views = append(views, view)
	}
	return views
}

// render sets the data and the rendered range of a viewport which has not
// been initialized, so that no strategy interferes with the range.
func render[T any](t *testing.T, v *Viewport, r *Repeater[T], items []T, rng Range) {
	t.Helper()
	require.NoError(t, r.SetData(items))
	v.SetRenderedRange(rng)
	v.Scheduler().Flush()
}

func destroyedCount[T any](views []*testView[T]) int {
	n := 0
	for _, view := range views {
		if view.destroyed {
			n++
		}
	}
	return n
}

func TestNewRepeaterErrors(t *testing.T) {
	_, err := NewRepeater[int](nil, TextTemplate(formatInt))
	assert.ErrorIs(t, err, ErrNoViewport)

	v := newTestViewport(t)
	_, err = NewRepeater[int](v, nil)
	assert.ErrorIs(t, err, ErrNoTemplate)

	_, err = NewRepeater(v, TextTemplate(formatInt), WithTemplateCacheSize[int](-1))
	assert.ErrorIs(t, err, ErrInvalidCacheSize)

	// Failed constructors must not leave the viewport attached.
	_, err = NewRepeater(v, TextTemplate(formatInt))
	assert.NoError(t, err)
}

func TestItemContext(t *testing.T) {
	first := ItemContext[string]{Item: "a", Index: 0, Count: 3}
	assert.True(t, first.First())
	assert.False(t, first.Last())
	assert.True(t, first.Even())
	assert.False(t, first.Odd())

	last := ItemContext[string]{Item: "c", Index: 2, Count: 3}
	assert.False(t, last.First())
	assert.True(t, last.Last())

	middle := ItemContext[string]{Item: "b", Index: 1, Count: 3}
	assert.True(t, middle.Odd())
}

func TestRepeaterMeasureRangeSize(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)
	render(t, v, r, ints(100), Range{Start: 20, End: 40})

	require.Equal(t, Range{Start: 20, End: 40}, r.RenderedRange())

	_, err = r.MeasureRangeSize(Range{Start: 10, End: 15}, OrientationVertical)
	assert.ErrorIs(t, err, ErrRangeNotRendered)

	_, err = r.MeasureRangeSize(Range{Start: 35, End: 45}, OrientationVertical)
	assert.ErrorIs(t, err, ErrRangeNotRendered)

	size, err := r.MeasureRangeSize(Range{Start: 25, End: 30}, OrientationVertical)
	require.NoError(t, err)
	assert.Equal(t, 5.0, size)

	size, err = r.MeasureRangeSize(Range{Start: 50, End: 50}, OrientationVertical)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRepeaterBindsContext(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)
	render(t, v, r, ints(50), Range{Start: 10, End: 15})

	views := renderedTestViews(t, r)
	require.Len(t, views, 5)
	for i, view := range views {
		assert.Equal(t, 10+i, view.ctx.Index)
		assert.Equal(t, 10+i, view.ctx.Item)
		assert.Equal(t, 50, view.ctx.Count)
	}
}

func TestRepeaterClampsRangeToData(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)
	render(t, v, r, ints(8), Range{Start: 5, End: 20})

	assert.Equal(t, Range{Start: 5, End: 8}, r.RenderedRange())
	assert.Len(t, r.RenderedViews(), 3)
}

func TestRepeaterDuplicateItems(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)

	render(t, v, r, []int{1, 2, 1}, Range{Start: 0, End: 3})
	initial := renderedTestViews(t, r)
	require.Len(t, initial, 3)

	require.NoError(t, r.SetData([]int{1, 3, 1}))
	v.Scheduler().Flush()
	views := renderedTestViews(t, r)
	require.Len(t, views, 3)
	assert.Same(t, initial[0], views[0])
	assert.Same(t, initial[2], views[2])
	for i, item := range []int{1, 3, 1} {
		assert.Equal(t, i, views[i].ctx.Index)
		assert.Equal(t, item, views[i].ctx.Item)
	}

	require.NoError(t, r.SetData([]int{3, 1, 1}))
	v.Scheduler().Flush()
	moved := renderedTestViews(t, r)
	require.Len(t, moved, 3)
	// The view of 3 moves up and the first 1 moves down. The last 1 stays.
	assert.Same(t, views[1], moved[0])
	assert.Same(t, views[0], moved[1])
	assert.Same(t, views[2], moved[2])
	for i, item := range []int{3, 1, 1} {
		assert.Equal(t, i, moved[i].ctx.Index)
		assert.Equal(t, item, moved[i].ctx.Item)
	}

	assert.Len(t, created, 3)
	assert.Equal(t, 2, r.Stats().Moved)
	assert.Zero(t, destroyedCount(created))
}

func TestRepeaterRecyclesViews(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created), WithTemplateCacheSize[int](2))
	require.NoError(t, err)

	render(t, v, r, ints(100), Range{Start: 0, End: 5})
	require.Len(t, created, 5)

	v.SetRenderedRange(Range{Start: 50, End: 55})
	v.Scheduler().Flush()

	assert.Equal(t, RepeaterStats{
		Created:   8,
		Reused:    2,
		Cached:    5,
		Destroyed: 3,
	}, r.Stats())
	assert.Len(t, created, 8)
	assert.Equal(t, 3, destroyedCount(created))
	assert.Zero(t, r.CachedViews())

	for i, view := range renderedTestViews(t, r) {
		assert.False(t, view.destroyed)
		assert.Equal(t, 50+i, view.ctx.Item)
	}
}

func TestRepeaterWithoutCache(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created), WithTemplateCacheSize[int](0))
	require.NoError(t, err)

	render(t, v, r, ints(100), Range{Start: 0, End: 5})
	v.SetRenderedRange(Range{Start: 50, End: 55})
	v.Scheduler().Flush()

	stats := r.Stats()
	assert.Equal(t, 10, stats.Created)
	assert.Zero(t, stats.Reused)
	assert.Zero(t, stats.Cached)
	assert.Equal(t, 5, stats.Destroyed)
	assert.Equal(t, 5, destroyedCount(created))
}

func TestRepeaterKeepsCachedViewsForReuse(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)

	render(t, v, r, ints(100), Range{Start: 0, End: 10})
	v.SetRenderedRange(Range{Start: 0, End: 4})
	v.Scheduler().Flush()

	assert.Equal(t, 6, r.CachedViews())
	assert.Zero(t, destroyedCount(created))

	v.SetRenderedRange(Range{Start: 0, End: 10})
	v.Scheduler().Flush()

	assert.Zero(t, r.CachedViews())
	assert.Len(t, created, 10)
	assert.Equal(t, 6, r.Stats().Reused)
}

type person struct {
	id   int
	name string
}

func TestRepeaterTrackBy(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[person]
	r, err := NewRepeater(v, testTemplate("row", &created), WithTrackBy(func(_ int, p person) any {
		return p.id
	}))
	require.NoError(t, err)

	render(t, v, r, []person{{1, "ada"}, {2, "grace"}}, Range{Start: 0, End: 2})
	before := renderedTestViews(t, r)

	require.NoError(t, r.SetData([]person{{2, "grace"}, {1, "Ada"}}))
	v.Scheduler().Flush()
	after := renderedTestViews(t, r)

	require.Len(t, after, 2)
	assert.Same(t, before[1], after[0])
	assert.Same(t, before[0], after[1])
	assert.Equal(t, "Ada", after[1].ctx.Item.name)
	assert.Equal(t, 1, after[1].ctx.Index)
	assert.Len(t, created, 2)
	assert.Equal(t, 2, r.Stats().Moved)
}

func TestRepeaterUncomparableItems(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[[]int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)

	render(t, v, r, [][]int{{1}, {2}, {3}}, Range{Start: 0, End: 3})
	before := renderedTestViews(t, r)

	require.NoError(t, r.SetData([][]int{{3}, {2}, {1}}))
	v.Scheduler().Flush()
	after := renderedTestViews(t, r)

	// Items without identity are matched by index.
	for i := range after {
		assert.Same(t, before[i], after[i])
	}
	assert.Equal(t, []int{3}, after[0].ctx.Item)
	assert.Zero(t, r.Stats().Moved)
}

func TestRepeaterItemsWithUncomparableFields(t *testing.T) {
	type tagged struct {
		Name  string
		Extra any
	}
	v := newTestViewport(t)
	var created []*testView[tagged]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)

	items := []tagged{{Name: "a", Extra: []int{1}}, {Name: "b", Extra: []int{2}}}
	require.NotPanics(t, func() {
		render(t, v, r, items, Range{Start: 0, End: 2})
	})
	before := renderedTestViews(t, r)
	require.Len(t, before, 2)

	require.NotPanics(t, func() {
		require.NoError(t, r.SetData([]tagged{items[1], items[0]}))
		v.Scheduler().Flush()
	})
	after := renderedTestViews(t, r)

	// The items are matched by index.
	for i := range after {
		assert.Same(t, before[i], after[i])
	}
	assert.Equal(t, "b", after[0].ctx.Item.Name)
	assert.Len(t, created, 2)
}

func TestRepeaterTemplateSelector(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	selector := func(index int, _ int) string {
		if index%3 == 0 {
			return "header"
		}
		return "missing"
	}
	r, err := NewRepeater(v, testTemplate("row", &created), WithTemplateSelector(selector, map[string]TemplateFunc[int]{
		"header": testTemplate("header", &created),
	}))
	require.NoError(t, err)

	render(t, v, r, ints(20), Range{Start: 0, End: 4})
	views := renderedTestViews(t, r)
	require.Len(t, views, 4)
	assert.Equal(t, []string{"header", "row", "row", "header"}, []string{views[0].kind, views[1].kind, views[2].kind, views[3].kind})

	// The header view of index 0 is cached but cannot serve index 4.
	v.SetRenderedRange(Range{Start: 1, End: 5})
	v.Scheduler().Flush()
	views = renderedTestViews(t, r)
	require.Len(t, views, 4)
	assert.Equal(t, []string{"row", "row", "header", "row"}, []string{views[0].kind, views[1].kind, views[2].kind, views[3].kind})
	assert.Len(t, created, 5)
	assert.Equal(t, 1, r.CachedViews())

	v.SetRenderedRange(Range{Start: 0, End: 4})
	v.Scheduler().Flush()
	assert.Len(t, created, 5)
	assert.Equal(t, "header", renderedTestViews(t, r)[0].kind)
	for _, view := range views {
		if view.ctx.Index%3 == 0 {
			assert.Equal(t, "header", view.kind)
		} else {
			assert.Equal(t, "row", view.kind)
		}
	}
}

func TestRepeaterViewChange(t *testing.T) {
	v := newTestViewport(t)
	r, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)

	var got []Range
	r.ViewChange().Subscribe(func(rng Range) {
		got = append(got, rng)
	})
	v.SetRenderedRange(Range{Start: 0, End: 5})
	v.SetRenderedRange(Range{Start: 0, End: 5})
	v.SetRenderedRange(Range{Start: 3, End: 8})

	assert.Equal(t, []Range{{Start: 0, End: 5}, {Start: 3, End: 8}}, got)
}

func TestRepeaterSetStream(t *testing.T) {
	v := newTestViewport(t)
	r, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)
	v.SetRenderedRange(Range{Start: 0, End: 10})

	stream := NewStream[[]int]()
	require.NoError(t, r.SetStream(stream))
	stream.Emit([]int{1, 2})
	v.Scheduler().Flush()
	assert.Equal(t, 2, v.GetDataLength())
	assert.Len(t, r.RenderedViews(), 2)

	stream.Emit([]int{1, 2, 3})
	v.Scheduler().Flush()
	assert.Equal(t, 3, v.GetDataLength())
	require.Len(t, r.RenderedViews(), 3)
	assert.Equal(t, "3", r.RenderedViews()[2].View.(*TextItem[int]).Text())

	data, ok := r.DataStream().Last()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, data)

	// Switching sources stops listening to the old one.
	require.NoError(t, r.SetData([]int{9}))
	stream.Emit([]int{1, 2, 3, 4})
	v.Scheduler().Flush()
	assert.Equal(t, 1, v.GetDataLength())
	assert.Zero(t, stream.Subscribers())
}

type pageLog struct {
	mu    sync.Mutex
	pages []int
}

func (l *pageLog) fetch(_ context.Context, page int) ([]int, error) {
	l.mu.Lock()
	l.pages = append(l.pages, page)
	l.mu.Unlock()
	items := make([]int, 100)
	for i := range items {
		items[i] = 1000 + page*100 + i
	}
	return items, nil
}

func (l *pageLog) fetched() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.pages...)
}

// flushUntil flushes the scheduler until cond holds.
func flushUntil(t *testing.T, s *Scheduler, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.Flush()
		if cond() {
			return
		}
		require.True(t, time.Now().Before(deadline), "condition not met before deadline")
		time.Sleep(time.Millisecond)
	}
}

func TestRepeaterPagedDataSource(t *testing.T) {
	v := newTestViewport(t)
	r, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)
	v.SetRenderedRange(Range{Start: 0, End: 20})

	var log pageLog
	source := NewPagedDataSource(250, 100, log.fetch, v.Scheduler())
	require.NoError(t, r.SetDataSource(source))
	v.Scheduler().Flush()
	assert.Equal(t, 250, v.GetDataLength())

	itemAt := func(i int) int {
		data, _ := r.DataStream().Last()
		return data[i]
	}
	flushUntil(t, v.Scheduler(), func() bool { return itemAt(0) == 1000 })
	assert.Equal(t, "1000", r.RenderedViews()[0].View.(*TextItem[int]).Text())
	assert.Zero(t, itemAt(100))

	v.SetRenderedRange(Range{Start: 90, End: 110})
	flushUntil(t, v.Scheduler(), func() bool { return itemAt(100) == 1100 })
	assert.Equal(t, []int{0, 1}, log.fetched())
	assert.Equal(t, "1100", r.RenderedViews()[10].View.(*TextItem[int]).Text())

	v.SetRenderedRange(Range{Start: 0, End: 20})
	v.Scheduler().Flush()
	assert.Equal(t, []int{0, 1}, log.fetched())

	require.NoError(t, r.Destroy())
	stream := source.stream
	assert.True(t, stream.Completed())
}

func TestPagedDataSourceRetriesFailedPages(t *testing.T) {
	scheduler := NewScheduler()
	viewer := &staticViewer{change: NewReplayStream[Range]()}

	var attempts int
	var mu sync.Mutex
	fetch := func(_ context.Context, page int) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return nil, errors.New("unavailable")
		}
		return []string{"a", "b"}, nil
	}

	var failed []int
	source := NewPagedDataSource(2, 10, fetch, scheduler).SetErrorFunc(func(page int, err error) {
		failed = append(failed, page)
	})
	stream := source.Connect(viewer)

	viewer.change.Emit(Range{Start: 0, End: 2})
	flushUntil(t, scheduler, func() bool { return len(failed) == 1 })
	assert.Equal(t, []int{0}, failed)

	viewer.change.Emit(Range{Start: 0, End: 1})
	flushUntil(t, scheduler, func() bool {
		data, _ := stream.Last()
		return data[0] == "a"
	})
	data, _ := stream.Last()
	assert.Equal(t, []string{"a", "b"}, data)

	source.Disconnect(viewer)
	assert.True(t, stream.Completed())
	assert.Zero(t, viewer.change.Subscribers())
}

func TestPagedDataSourceRefetchesAfterReconnect(t *testing.T) {
	scheduler := NewScheduler()

	var mu sync.Mutex
	var calls int
	fetch := func(ctx context.Context, page int) ([]int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return []int{42}, nil
		}
	}
	fetchCalls := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}

	source := NewPagedDataSource(1, 10, fetch, scheduler)
	first := &staticViewer{change: NewReplayStream[Range]()}
	source.Connect(first)
	first.change.Emit(Range{Start: 0, End: 1})

	// The page is still loading when the viewer goes away.
	source.Disconnect(first)

	second := &staticViewer{change: NewReplayStream[Range]()}
	stream := source.Connect(second)
	second.change.Emit(Range{Start: 0, End: 1})
	flushUntil(t, scheduler, func() bool {
		data, _ := stream.Last()
		return data[0] == 42
	})
	assert.Eventually(t, func() bool { return fetchCalls() == 2 }, time.Second, time.Millisecond)

	// Merged pages survive a reconnect and are not fetched again.
	source.Disconnect(second)
	third := &staticViewer{change: NewReplayStream[Range]()}
	stream = source.Connect(third)
	third.change.Emit(Range{Start: 0, End: 1})
	scheduler.Flush()
	data, _ := stream.Last()
	assert.Equal(t, []int{42}, data)
	assert.Equal(t, 2, fetchCalls())
}

func TestPagedDataSourceSharesStorage(t *testing.T) {
	scheduler := NewScheduler()
	viewer := &staticViewer{change: NewReplayStream[Range]()}

	var log pageLog
	source := NewPagedDataSource(200, 100, log.fetch, scheduler)
	stream := source.Connect(viewer)
	initial, ok := stream.Last()
	require.True(t, ok)
	assert.Len(t, initial, 200)
	assert.Equal(t, len(initial), cap(initial))

	viewer.change.Emit(Range{Start: 95, End: 105})
	flushUntil(t, scheduler, func() bool {
		data, _ := stream.Last()
		return data[0] == 1000 && data[100] == 1100
	})

	// Merging a page writes into the slice emitted first.
	latest, _ := stream.Last()
	assert.Same(t, &initial[0], &latest[0])
	assert.Equal(t, 1100, initial[100])
	assert.ElementsMatch(t, []int{0, 1}, log.fetched())
}

type staticViewer struct {
	change *Stream[Range]
}

func (v *staticViewer) ViewChange() *Stream[Range] { return v.change }

func TestRepeaterDestroy(t *testing.T) {
	v := newTestViewport(t)
	var created []*testView[int]
	r, err := NewRepeater(v, testTemplate("row", &created))
	require.NoError(t, err)
	render(t, v, r, ints(100), Range{Start: 0, End: 10})
	v.SetRenderedRange(Range{Start: 0, End: 6})
	v.Scheduler().Flush()
	require.Equal(t, 4, r.CachedViews())

	require.NoError(t, r.Destroy())
	assert.ErrorIs(t, r.Destroy(), ErrDestroyed)
	assert.ErrorIs(t, r.SetData(ints(3)), ErrDestroyed)
	_, err = r.MeasureRangeSize(Range{Start: 0, End: 1}, OrientationVertical)
	assert.ErrorIs(t, err, ErrDestroyed)

	assert.Equal(t, 10, destroyedCount(created))
	assert.Equal(t, 10, r.Stats().Destroyed)
	assert.Zero(t, r.CachedViews())
	assert.True(t, r.DataStream().Completed())
	assert.True(t, r.DataLength().Completed())
	assert.True(t, r.ViewChange().Completed())

	// Range changes after destroy no longer reach the repeater.
	v.SetRenderedRange(Range{Start: 20, End: 30})
	v.Scheduler().Flush()
	assert.Empty(t, r.RenderedViews())

	next, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)
	require.NoError(t, next.SetData(ints(100)))
	v.Scheduler().Flush()
	assert.Equal(t, Range{Start: 20, End: 30}, next.RenderedRange())
}

func TestRepeaterDestroyKeepsNewerRepeaterAttached(t *testing.T) {
	v := newTestViewport(t)
	old, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)

	v.Detach()
	next, err := NewRepeater(v, TextTemplate(formatInt))
	require.NoError(t, err)

	require.NoError(t, old.Destroy())
	_, err = NewRepeater(v, TextTemplate(formatInt))
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	render(t, v, next, ints(10), Range{Start: 0, End: 5})
	assert.Equal(t, 10, v.GetDataLength())
	assert.Len(t, next.RenderedViews(), 5)
}
