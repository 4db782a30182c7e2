package vscroll

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ayn2op/vscroll/keybind"
	"github.com/gdamore/tcell/v2"
)

// RenderedView is one rendered item view and its extent along the scroll
// axis.
type RenderedView struct {
	View Primitive
	Size int
}

// ViewRepeater renders the items of a viewport's rendered range. A viewport
// accepts at most one repeater at a time.
type ViewRepeater interface {
	// DataLength emits the number of items whenever the data changes. Late
	// subscribers receive the current length.
	DataLength() *Stream[int]
	// MeasureRangeSize returns the extent of the rendered items in r.
	MeasureRangeSize(r Range, orientation Orientation) (float64, error)
	// RenderedViews returns the rendered views in order.
	RenderedViews() []RenderedView
	// Sync reconciles the rendered views with the latest data and range.
	Sync()
}

type viewportState uint8

const (
	viewportCreated viewportState = iota
	viewportInitialized
	viewportDestroyed
)

// contentTransform is the translation applied to the rendered items.
type contentTransform struct {
	offset float64
	toEnd  bool
}

const (
	defaultScrollStep = 1
	wheelScrollLines  = 3
	smoothScrollFrame = 16 * time.Millisecond
)

// ViewportOption configures a Viewport.
type ViewportOption func(*Viewport)

// WithOrientation sets the scroll axis. The default is vertical.
func WithOrientation(orientation Orientation) ViewportOption {
	return func(v *Viewport) {
		v.orientation = orientation
	}
}

// WithAppendOnly pins the rendered range to start at 0 and never shrink.
func WithAppendOnly(appendOnly bool) ViewportOption {
	return func(v *Viewport) {
		v.appendOnly = appendOnly
	}
}

// WithDirection sets the layout direction of horizontal viewports.
func WithDirection(direction Direction) ViewportOption {
	return func(v *Viewport) {
		v.direction = direction
	}
}

// WithScheduler sets the scheduler used to batch updates. It must be
// flushed by the owner of the viewport, usually the Application.
func WithScheduler(scheduler *Scheduler) ViewportOption {
	return func(v *Viewport) {
		if scheduler != nil {
			v.scheduler = scheduler
		}
	}
}

// WithMetrics replaces the measurement of the viewport's size and scroll
// position.
func WithMetrics(metrics ViewportMetrics) ViewportOption {
	return func(v *Viewport) {
		v.metrics = metrics
	}
}

// WithScrollDispatcher registers the viewport with a dispatcher on Init.
func WithScrollDispatcher(dispatcher *ScrollDispatcher) ViewportOption {
	return func(v *Viewport) {
		v.dispatcher = dispatcher
	}
}

// WithScrollAuditTime sets how scroll events are coalesced before the
// strategy recomputes the rendered range. Zero coalesces per turn.
func WithScrollAuditTime(audit time.Duration) ViewportOption {
	return func(v *Viewport) {
		v.auditTime = audit
	}
}

// WithScrollBar toggles the scroll bar of vertical viewports.
func WithScrollBar(show bool) ViewportOption {
	return func(v *Viewport) {
		if show {
			v.scrollBar = NewScrollBar()
		} else {
			v.scrollBar = nil
		}
	}
}

// WithLogger sets the logger used for lifecycle and range changes.
func WithLogger(logger *slog.Logger) ViewportOption {
	return func(v *Viewport) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys ViewportKeyMap) ViewportOption {
	return func(v *Viewport) {
		v.keys = keys
	}
}

// WithScrollStep sets the distance of one key press scroll in cells.
func WithScrollStep(step float64) ViewportOption {
	return func(v *Viewport) {
		if step > 0 {
			v.scrollStep = step
		}
	}
}

// Viewport is a scroll container which renders only the items within its
// rendered range while behaving as if all items were present: the scroll
// bar, the scroll offset and scrolling to an index all account for the total
// content size reported by the strategy.
//
// All state changes requested by the strategy and the repeater go through
// SetTotalContentSize, SetRenderedRange and SetRenderedContentOffset and are
// applied in a single flush of the scheduler.
type Viewport struct {
	*Box

	strategy   VirtualScrollStrategy
	repeater   ViewRepeater
	metrics    ViewportMetrics
	scheduler  *Scheduler
	dispatcher *ScrollDispatcher
	logger     *slog.Logger
	scrollBar  *ScrollBar
	keys       ViewportKeyMap

	orientation Orientation
	direction   Direction
	appendOnly  bool
	auditTime   time.Duration
	scrollStep  float64

	state   viewportState
	laidOut bool

	viewportSize          float64
	totalContentSize      float64
	scrollOffset          float64
	dataLength            int
	renderedRange         Range
	renderedContentOffset float64
	offsetNeedsRewrite    bool

	pendingTransform contentTransform
	appliedTransform contentTransform

	changeDetectionPending  bool
	runAfterChangeDetection []func()

	renderedRangeStream *Stream[Range]
	elementScrolled     *Stream[Scrollable]

	cancelInit            func()
	cancelResize          func()
	cancelChangeDetection func()
	stopScrolled          func()
	detachData            func()

	smoothTarget float64
	smoothGen    int
	smoothTimer  *time.Timer
}

// NewViewport returns a viewport driven by strategy. Call Init once the
// viewport is part of the layout and Destroy when it is removed.
func NewViewport(strategy VirtualScrollStrategy, opts ...ViewportOption) (*Viewport, error) {
	if strategy == nil {
		return nil, ErrNoStrategy
	}
	v := &Viewport{
		Box:                 NewBox(),
		strategy:            strategy,
		scheduler:           NewScheduler(),
		logger:              defaultLogger,
		scrollBar:           NewScrollBar(),
		keys:                DefaultViewportKeyMap(),
		scrollStep:          defaultScrollStep,
		renderedRangeStream: NewReplayStream[Range]().Distinct(rangesEqual),
		elementScrolled:     NewStream[Scrollable](),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.metrics == nil {
		v.metrics = boxMetrics{viewport: v}
	}
	return v, nil
}

// Scheduler returns the scheduler batching this viewport's updates.
func (v *Viewport) Scheduler() *Scheduler {
	return v.scheduler
}

// Orientation returns the scroll axis.
func (v *Viewport) Orientation() Orientation {
	return v.orientation
}

// AppendOnly reports whether the viewport is in append-only mode.
func (v *Viewport) AppendOnly() bool {
	return v.appendOnly
}

// Init attaches the strategy and schedules the first measurement and the
// subscription to scroll events. The scheduled work is dropped if the
// viewport is destroyed before the scheduler is flushed.
func (v *Viewport) Init() error {
	switch v.state {
	case viewportDestroyed:
		return ErrDestroyed
	case viewportInitialized:
		return fmt.Errorf("viewport already initialized: %w", ErrStrategyAttached)
	}

	v.measureViewportSize()
	if err := v.strategy.Attach(v); err != nil {
		return fmt.Errorf("attach scroll strategy: %w", err)
	}
	v.state = viewportInitialized

	v.cancelInit = v.scheduler.Schedule(func() {
		v.cancelInit = nil
		v.CheckViewportSize()

		scrolled, stop := Audit(v.elementScrolled, v.scheduler, v.auditTime)
		v.stopScrolled = stop
		scrolled.Subscribe(func(Scrollable) {
			v.strategy.OnContentScrolled()
		})
		v.markChangeDetectionNeeded(nil)
	})
	if v.dispatcher != nil {
		v.dispatcher.Register(v)
	}

	v.logger.Debug("viewport initialized", "orientation", v.orientation.String(), "appendOnly", v.appendOnly)
	return nil
}

// Destroy detaches the repeater and the strategy, completes all streams and
// cancels pending work.
func (v *Viewport) Destroy() {
	if v.state == viewportDestroyed {
		return
	}
	v.state = viewportDestroyed

	for _, cancel := range []func(){v.cancelInit, v.cancelResize, v.cancelChangeDetection, v.stopScrolled} {
		if cancel != nil {
			cancel()
		}
	}
	v.cancelInit, v.cancelResize, v.cancelChangeDetection, v.stopScrolled = nil, nil, nil, nil
	v.stopSmoothScroll()

	v.Detach()
	v.strategy.Detach()
	v.renderedRangeStream.Complete()
	v.elementScrolled.Complete()
	if v.dispatcher != nil {
		v.dispatcher.Deregister(v)
	}
	v.runAfterChangeDetection = nil

	v.logger.Debug("viewport destroyed")
}

// Attach connects a repeater to the viewport.
func (v *Viewport) Attach(repeater ViewRepeater) error {
	if v.state == viewportDestroyed {
		return ErrDestroyed
	}
	if v.repeater != nil {
		return ErrAlreadyAttached
	}

	v.repeater = repeater
	v.detachData = repeater.DataLength().Subscribe(func(length int) {
		if length != v.dataLength {
			v.dataLength = length
			v.strategy.OnDataLengthChanged()
		}
		v.doChangeDetection()
	})
	return nil
}

// Detach disconnects the current repeater.
func (v *Viewport) Detach() {
	if v.detachData != nil {
		v.detachData()
		v.detachData = nil
	}
	v.repeater = nil
}

// ElementScrolled emits the viewport whenever its scroll offset changes.
func (v *Viewport) ElementScrolled() *Stream[Scrollable] {
	return v.elementScrolled
}

// RenderedRangeStream emits the rendered range whenever it changes.
func (v *Viewport) RenderedRangeStream() *Stream[Range] {
	return v.renderedRangeStream
}

// ScrolledIndexChange emits the index of the first visible item.
func (v *Viewport) ScrolledIndexChange() *Stream[int] {
	return v.strategy.ScrolledIndexChange()
}

// GetDataLength returns the number of items in the data.
func (v *Viewport) GetDataLength() int {
	return v.dataLength
}

// GetViewportSize returns the size of the viewport along the scroll axis.
func (v *Viewport) GetViewportSize() float64 {
	return v.viewportSize
}

// GetRenderedRange returns the range of rendered items.
func (v *Viewport) GetRenderedRange() Range {
	return v.renderedRange
}

// GetTotalContentSize returns the size all items would occupy.
func (v *Viewport) GetTotalContentSize() float64 {
	return v.totalContentSize
}

// GetRenderedContentOffset returns the offset of the rendered content
// relative to the edge it was last set against.
func (v *Viewport) GetRenderedContentOffset() float64 {
	return v.renderedContentOffset
}

// GetOffsetToRenderedContentStart returns the offset from the start of the
// content to the start of the rendered items. It is not known while a to-end
// offset waits to be rewritten.
func (v *Viewport) GetOffsetToRenderedContentStart() (float64, bool) {
	if v.offsetNeedsRewrite {
		return 0, false
	}
	return v.renderedContentOffset, true
}

// SetTotalContentSize sets the size all items would occupy.
func (v *Viewport) SetTotalContentSize(size float64) {
	if v.totalContentSize == size {
		return
	}
	v.totalContentSize = size
	if v.scrollOffset > v.maxScrollOffset() {
		v.setScrollOffset(v.maxScrollOffset())
	}
	v.markChangeDetectionNeeded(nil)
}

// SetRenderedRange sets the range of items to render. In append-only mode
// the range always starts at 0 and its end never decreases.
func (v *Viewport) SetRenderedRange(r Range) {
	if v.appendOnly {
		r = Range{Start: 0, End: max(v.renderedRange.End, r.End)}
	}
	if rangesEqual(v.renderedRange, r) {
		return
	}
	v.renderedRange = r
	v.logger.Debug("rendered range changed", "range", r.String())
	v.renderedRangeStream.Emit(r)
	v.markChangeDetectionNeeded(v.strategy.OnContentRendered)
}

// SetRenderedContentOffset positions the rendered items. With ToEnd the
// offset refers to the end of the rendered items; it is rewritten into a
// start offset after the next flush, once the rendered size is known.
func (v *Viewport) SetRenderedContentOffset(offset float64, to ContentEdge) {
	if v.appendOnly && to == ToStart {
		offset = 0
	}
	v.renderedContentOffset = offset
	if to == ToEnd {
		v.offsetNeedsRewrite = true
	}

	transform := contentTransform{offset: offset, toEnd: to == ToEnd}
	if v.pendingTransform == transform {
		return
	}
	v.pendingTransform = transform
	v.markChangeDetectionNeeded(func() {
		if v.offsetNeedsRewrite {
			v.renderedContentOffset -= v.MeasureRenderedContentSize()
			v.offsetNeedsRewrite = false
			v.SetRenderedContentOffset(v.renderedContentOffset, ToStart)
		} else {
			v.strategy.OnRenderedOffsetChanged()
		}
	})
}

// MeasureScrollOffset returns the scroll offset measured from the given
// edge of the content. Start and end follow the layout direction.
func (v *Viewport) MeasureScrollOffset(from Edge) float64 {
	pos := v.metrics.ScrollPosition()
	maxOffset := v.maxScrollOffset()

	if v.orientation == OrientationVertical {
		switch from {
		case EdgeStart, EdgeTop:
			return pos.Top
		case EdgeEnd, EdgeBottom:
			return maxOffset - pos.Top
		}
		return 0
	}

	left := pos.Left
	right := maxOffset - left
	rtl := v.direction == DirectionRTL
	switch from {
	case EdgeLeft:
		return left
	case EdgeRight:
		return right
	case EdgeStart:
		if rtl {
			return right
		}
		return left
	case EdgeEnd:
		if rtl {
			return left
		}
		return right
	}
	return 0
}

// MeasureRenderedContentSize returns the extent of all rendered items.
func (v *Viewport) MeasureRenderedContentSize() float64 {
	if v.repeater == nil {
		return 0
	}
	size := 0
	for _, rendered := range v.repeater.RenderedViews() {
		size += rendered.Size
	}
	return float64(size)
}

// MeasureRangeSize returns the extent of the rendered items in r.
func (v *Viewport) MeasureRangeSize(r Range) (float64, error) {
	if v.repeater == nil {
		return 0, nil
	}
	return v.repeater.MeasureRangeSize(r, v.orientation)
}

// ScrollToOffset scrolls to offset cells from the start of the content.
func (v *Viewport) ScrollToOffset(offset float64, behavior ScrollBehavior) {
	if v.state == viewportDestroyed {
		return
	}
	offset = math.Min(math.Max(offset, 0), v.maxScrollOffset())
	if behavior == ScrollSmooth {
		v.startSmoothScroll(offset)
		return
	}
	v.stopSmoothScroll()
	v.setScrollOffset(offset)
}

// ScrollBy scrolls by delta cells.
func (v *Viewport) ScrollBy(delta float64) {
	v.ScrollToOffset(v.scrollOffset+delta, ScrollAuto)
}

// ScrollToIndex scrolls to the item at index.
func (v *Viewport) ScrollToIndex(index int, behavior ScrollBehavior) {
	v.strategy.ScrollToIndex(index, behavior)
}

// CheckViewportSize measures the viewport again and lets the strategy
// recompute the rendered range.
func (v *Viewport) CheckViewportSize() {
	v.measureViewportSize()
	v.strategy.OnDataLengthChanged()
}

// SetRect sets the position of the viewport and schedules a size check if
// its size along the scroll axis changed.
func (v *Viewport) SetRect(x, y, width, height int) {
	v.Box.SetRect(x, y, width, height)
	v.laidOut = true
	if v.state != viewportInitialized || v.cancelResize != nil {
		return
	}
	if v.measuredSize() != v.viewportSize {
		v.cancelResize = v.scheduler.Schedule(func() {
			v.cancelResize = nil
			v.CheckViewportSize()
		})
	}
}

// Draw draws the rendered items and the scroll bar.
func (v *Viewport) Draw(screen tcell.Screen) {
	v.DrawForSubclass(screen, v)
	defer v.MarkClean()

	x, y, width, height := v.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	if v.scrollBarVisible() {
		width--
		v.scrollBar.
			SetLengths(ScrollLengths{ContentLen: cells(v.totalContentSize), ViewportLen: height}).
			SetOffset(cells(v.scrollOffset))
		v.scrollBar.SetRect(x+width, y, 1, height)
		v.scrollBar.Draw(screen)
	}

	if v.repeater == nil {
		return
	}

	mainLen := height
	if v.orientation == OrientationHorizontal {
		mainLen = width
	}
	start := v.appliedTransform.offset
	if v.appliedTransform.toEnd {
		start -= v.MeasureRenderedContentSize()
	}
	pos := cells(start - v.scrollOffset)

	clipped := newClippedScreen(screen, x, y, width, height)
	for _, rendered := range v.repeater.RenderedViews() {
		size := rendered.Size
		if size > 0 && pos+size > 0 && pos < mainLen {
			switch {
			case v.orientation == OrientationVertical:
				rendered.View.SetRect(x, y+pos, width, size)
			case v.direction == DirectionRTL:
				rendered.View.SetRect(x+width-pos-size, y, size, height)
			default:
				rendered.View.SetRect(x+pos, y, size, height)
			}
			rendered.View.Draw(clipped)
		}
		pos += size
	}
}

// InputHandler scrolls the viewport with the configured key bindings.
func (v *Viewport) InputHandler(event *tcell.EventKey) Command {
	page := math.Max(v.viewportSize-v.scrollStep, v.scrollStep)
	switch {
	case keybind.Matches(event, v.keys.ScrollBackward):
		v.ScrollBy(-v.scrollStep)
	case keybind.Matches(event, v.keys.ScrollForward):
		v.ScrollBy(v.scrollStep)
	case keybind.Matches(event, v.keys.PageBackward):
		v.ScrollBy(-page)
	case keybind.Matches(event, v.keys.PageForward):
		v.ScrollBy(page)
	case keybind.Matches(event, v.keys.Start):
		v.ScrollToOffset(0, ScrollAuto)
	case keybind.Matches(event, v.keys.End):
		v.ScrollToOffset(v.maxScrollOffset(), ScrollAuto)
	default:
		return nil
	}
	return RedrawCommand{}
}

// MouseHandler scrolls the viewport with the mouse wheel.
func (v *Viewport) MouseHandler(action MouseAction, event *tcell.EventMouse) (Primitive, Command) {
	if !v.InRect(event.Position()) {
		return nil, nil
	}
	switch action {
	case MouseLeftDown:
		if v.scrollBarVisible() && v.scrollBar.InRect(event.Position()) {
			_, barY, _, barHeight := v.scrollBar.GetInnerRect()
			_, y := event.Position()
			if offset, ok := v.scrollBar.OffsetForClick(y-barY, barHeight); ok {
				v.ScrollToOffset(float64(offset), ScrollAuto)
			}
			return nil, AppendCommand(SetFocusCommand{Target: v}, RedrawCommand{})
		}
		return nil, SetFocusCommand{Target: v}
	case MouseScrollUp, MouseScrollLeft:
		v.ScrollBy(-wheelScrollLines * v.scrollStep)
	case MouseScrollDown, MouseScrollRight:
		v.ScrollBy(wheelScrollLines * v.scrollStep)
	default:
		return nil, nil
	}
	return nil, RedrawCommand{}
}

// KeyMap returns the key bindings of the viewport.
func (v *Viewport) KeyMap() ViewportKeyMap {
	return v.keys
}

// crossSize is the size available to items across the scroll axis.
func (v *Viewport) crossSize() int {
	_, _, width, height := v.GetInnerRect()
	if v.orientation == OrientationHorizontal {
		return height
	}
	if v.scrollBarVisible() {
		width--
	}
	return max(width, 0)
}

func (v *Viewport) scrollBarVisible() bool {
	if v.scrollBar == nil || v.orientation != OrientationVertical {
		return false
	}
	_, _, width, _ := v.GetInnerRect()
	return width > 1 && v.totalContentSize > v.viewportSize
}

func (v *Viewport) maxScrollOffset() float64 {
	return math.Max(v.totalContentSize-v.viewportSize, 0)
}

func (v *Viewport) measuredSize() float64 {
	size := v.metrics.ViewportSize()
	if v.orientation == OrientationHorizontal {
		return float64(size.Width)
	}
	return float64(size.Height)
}

func (v *Viewport) measureViewportSize() {
	v.viewportSize = v.measuredSize()
}

func (v *Viewport) setScrollOffset(offset float64) {
	if v.scrollOffset == offset {
		return
	}
	v.scrollOffset = offset
	v.MarkDirty()
	v.elementScrolled.Emit(v)
}

func (v *Viewport) startSmoothScroll(target float64) {
	v.stopSmoothScroll()
	v.smoothTarget = target
	v.smoothStep(v.smoothGen)
}

func (v *Viewport) smoothStep(gen int) {
	if gen != v.smoothGen || v.state == viewportDestroyed {
		return
	}
	remaining := v.smoothTarget - v.scrollOffset
	step := remaining / 2
	if math.Abs(remaining) <= 1 {
		step = remaining
	}
	v.setScrollOffset(v.scrollOffset + step)
	if v.scrollOffset == v.smoothTarget {
		v.smoothTimer = nil
		return
	}
	v.smoothTimer = time.AfterFunc(smoothScrollFrame, func() {
		v.scheduler.Post(func() { v.smoothStep(gen) })
	})
}

func (v *Viewport) stopSmoothScroll() {
	v.smoothGen++
	if v.smoothTimer != nil {
		v.smoothTimer.Stop()
		v.smoothTimer = nil
	}
}

// markChangeDetectionNeeded queues a flush of the pending state. All calls
// before the flush share it; runAfter callbacks run at its end in order.
func (v *Viewport) markChangeDetectionNeeded(runAfter func()) {
	if v.state == viewportDestroyed {
		return
	}
	if runAfter != nil {
		v.runAfterChangeDetection = append(v.runAfterChangeDetection, runAfter)
	}
	if v.changeDetectionPending {
		return
	}
	v.changeDetectionPending = true
	v.cancelChangeDetection = v.scheduler.Schedule(v.doChangeDetection)
}

// doChangeDetection applies the pending transform, lets the repeater catch
// up and runs the queued callbacks.
func (v *Viewport) doChangeDetection() {
	if v.state == viewportDestroyed {
		return
	}
	if v.cancelChangeDetection != nil {
		v.cancelChangeDetection()
		v.cancelChangeDetection = nil
	}
	v.changeDetectionPending = false

	v.appliedTransform = v.pendingTransform
	if v.repeater != nil {
		v.repeater.Sync()
	}
	v.MarkDirty()

	runAfter := v.runAfterChangeDetection
	v.runAfterChangeDetection = nil
	for _, fn := range runAfter {
		fn()
	}
}

func cells(size float64) int {
	return int(math.Round(size))
}

var (
	_ Primitive  = &Viewport{}
	_ ScrollHost = &Viewport{}
	_ Scrollable = &Viewport{}
)
