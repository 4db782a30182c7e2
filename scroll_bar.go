package vscroll

import "github.com/gdamore/tcell/v2"

// ScrollBarArrows controls which endcaps are rendered.
type ScrollBarArrows uint8

const (
	ScrollBarArrowsNone ScrollBarArrows = iota
	ScrollBarArrowsStart
	ScrollBarArrowsEnd
	ScrollBarArrowsBoth
)

func (a ScrollBarArrows) hasStart() bool {
	return a == ScrollBarArrowsStart || a == ScrollBarArrowsBoth
}

func (a ScrollBarArrows) hasEnd() bool {
	return a == ScrollBarArrowsEnd || a == ScrollBarArrowsBoth
}

// TrackClickBehavior configures what a click on the track outside the thumb
// does.
type TrackClickBehavior uint8

const (
	TrackClickBehaviorPage TrackClickBehavior = iota
	TrackClickBehaviorJumpToClick
)

// ScrollLengths bundles content and viewport lengths in cells.
type ScrollLengths struct {
	ContentLen  int
	ViewportLen int
}

const subcell = 8

// GlyphSet defines the track, arrow and fractional thumb runes.
type GlyphSet struct {
	Track rune

	ArrowStart rune
	ArrowEnd   rune

	ThumbLower [subcell]rune
	ThumbUpper [subcell]rune
}

// MinimalGlyphSet returns a glyph set with a blank track.
func MinimalGlyphSet() GlyphSet {
	g := LegacyComputingGlyphSet()
	g.Track = ' '
	return g
}

// LegacyComputingGlyphSet uses the legacy computing block for 1/8 cell thumb
// steps in both directions.
func LegacyComputingGlyphSet() GlyphSet {
	return GlyphSet{
		Track:      '│',
		ArrowStart: '▲',
		ArrowEnd:   '▼',
		ThumbLower: [subcell]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'},
		ThumbUpper: [subcell]rune{'▔', '🮂', '🮃', '▀', '🮄', '🮅', '🮆', '█'},
	}
}

// UnicodeGlyphSet approximates the upper thumb runes with block elements
// that most fonts have.
func UnicodeGlyphSet() GlyphSet {
	return GlyphSet{
		Track:      '│',
		ArrowStart: '▲',
		ArrowEnd:   '▼',
		ThumbLower: [subcell]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'},
		ThumbUpper: [subcell]rune{'▔', '▔', '▀', '▀', '▀', '▀', '█', '█'},
	}
}

// ScrollBar renders a vertical scroll bar for a content of ContentLen cells
// seen through a viewport of ViewportLen cells.
type ScrollBar struct {
	*Box

	autoHide    bool
	contentLen  int
	viewportLen int
	offset      int

	trackStyle tcell.Style
	thumbStyle tcell.Style
	arrowStyle tcell.Style

	glyphSet  GlyphSet
	arrows    ScrollBarArrows
	showTrack bool

	trackClickBehavior TrackClickBehavior
}

// NewScrollBar returns a scroll bar which hides itself when the content fits.
func NewScrollBar() *ScrollBar {
	return &ScrollBar{
		Box:                NewBox(),
		autoHide:           true,
		trackStyle:         tcell.StyleDefault.Foreground(Styles.GraphicsColor).Dim(true),
		thumbStyle:         tcell.StyleDefault.Foreground(Styles.GraphicsColor),
		arrowStyle:         tcell.StyleDefault.Foreground(Styles.GraphicsColor).Dim(true),
		glyphSet:           MinimalGlyphSet(),
		showTrack:          true,
		trackClickBehavior: TrackClickBehaviorPage,
	}
}

// SetLengths sets content and viewport lengths.
func (s *ScrollBar) SetLengths(lengths ScrollLengths) *ScrollBar {
	s.contentLen = max(lengths.ContentLen, 0)
	s.viewportLen = max(lengths.ViewportLen, 0)
	return s
}

// SetOffset sets the offset of the viewport into the content.
func (s *ScrollBar) SetOffset(offset int) *ScrollBar {
	s.offset = max(offset, 0)
	return s
}

func (s *ScrollBar) SetGlyphSet(g GlyphSet) *ScrollBar {
	s.glyphSet = g
	return s
}

func (s *ScrollBar) SetArrows(arrows ScrollBarArrows) *ScrollBar {
	s.arrows = arrows
	return s
}

func (s *ScrollBar) SetTrackClickBehavior(behavior TrackClickBehavior) *ScrollBar {
	s.trackClickBehavior = behavior
	return s
}

// SetAutoHide controls whether the scroll bar is hidden when there is
// nothing to scroll.
func (s *ScrollBar) SetAutoHide(autoHide bool) *ScrollBar {
	s.autoHide = autoHide
	return s
}

func (s *ScrollBar) SetThumbStyle(style tcell.Style) *ScrollBar {
	s.thumbStyle = style
	return s
}

// SetTrack sets the track rune and whether the track is drawn at all.
func (s *ScrollBar) SetTrack(r rune, visible bool) *ScrollBar {
	s.glyphSet.Track = r
	s.showTrack = visible
	return s
}

func (s *ScrollBar) SetTrackStyle(style tcell.Style) *ScrollBar {
	s.trackStyle = style
	return s
}

func (s *ScrollBar) trackCells(length int) int {
	if length <= 0 {
		return 0
	}
	arrows := 0
	if s.arrows.hasStart() {
		arrows++
	}
	if s.arrows.hasEnd() {
		arrows++
	}
	return max(length-arrows, 0)
}

func (s *ScrollBar) viewportLength(length int) int {
	if s.viewportLen > 0 {
		return s.viewportLen
	}
	return max(length, 0)
}

// scrollMetrics is the scroll bar geometry in subcell units.
type scrollMetrics struct {
	trackCells int
	trackLen   int
	thumbLen   int
	thumbStart int
}

func (s *ScrollBar) metrics(length int) scrollMetrics {
	return computeScrollMetrics(s.trackCells(length), s.contentLen, s.viewportLength(length), s.offset)
}

func computeScrollMetrics(trackCells, contentLen, viewportLen, offset int) scrollMetrics {
	trackLen := trackCells * subcell
	if trackLen == 0 {
		return scrollMetrics{}
	}

	contentLen = max(contentLen, 1)
	viewportLen = min(max(viewportLen, 1), contentLen)
	maxOffset := max(contentLen-viewportLen, 0)
	offset = min(max(offset, 0), maxOffset)

	if maxOffset == 0 {
		return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: trackLen}
	}

	// The thumb is at least one cell long and proportional to the visible
	// share of the content.
	thumbLen := min(max((trackLen*viewportLen)/contentLen, subcell), trackLen)
	thumbTravel := max(trackLen-thumbLen, 0)
	thumbStart := (thumbTravel * offset) / maxOffset
	return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: thumbLen, thumbStart: thumbStart}
}

// Visible reports whether the scroll bar draws anything at the given length.
func (s *ScrollBar) Visible(length int) bool {
	m := s.metrics(length)
	if length <= 0 || m.trackLen == 0 || s.contentLen <= 0 {
		return false
	}
	if s.autoHide {
		contentLen := max(s.contentLen, 1)
		viewportLen := min(max(s.viewportLength(length), 1), contentLen)
		if contentLen <= viewportLen {
			return false
		}
	}
	return true
}

// OffsetForClick returns the content offset a click on the given cell of
// the scroll bar scrolls to. ok is false for clicks on the thumb.
func (s *ScrollBar) OffsetForClick(cell, length int) (offset int, ok bool) {
	m := s.metrics(length)
	if s.arrows.hasStart() {
		if cell == 0 {
			return s.offset - 1, true
		}
		cell--
	}
	if cell >= m.trackCells {
		if s.arrows.hasEnd() {
			return s.offset + 1, true
		}
		return 0, false
	}

	clicked := cell * subcell
	viewportLen := s.viewportLength(length)
	switch {
	case clicked+subcell <= m.thumbStart:
		if s.trackClickBehavior == TrackClickBehaviorPage {
			return s.offset - viewportLen, true
		}
	case clicked >= m.thumbStart+m.thumbLen:
		if s.trackClickBehavior == TrackClickBehaviorPage {
			return s.offset + viewportLen, true
		}
	default:
		return 0, false
	}

	travel := max(m.trackLen-m.thumbLen, 1)
	maxOffset := max(s.contentLen-viewportLen, 0)
	return min(max(clicked-m.thumbLen/2, 0), travel) * maxOffset / travel, true
}

// cellFill returns the part of a track cell covered by the thumb, in
// subcells relative to the cell's top.
func cellFill(m scrollMetrics, cellIndex int) (start int, fillLen int) {
	if m.thumbLen == 0 {
		return 0, 0
	}
	cellStart := cellIndex * subcell
	cellEnd := cellStart + subcell
	thumbEnd := m.thumbStart + m.thumbLen
	start = max(m.thumbStart, cellStart)
	end := min(thumbEnd, cellEnd)
	if end <= start {
		return 0, 0
	}
	fillLen = min(end-start, subcell)
	start = min(max(start-cellStart, 0), subcell)
	return start, fillLen
}

func (s *ScrollBar) glyph(start, fillLen int) (rune, tcell.Style) {
	if fillLen <= 0 {
		if !s.showTrack {
			return ' ', s.trackStyle
		}
		return s.glyphSet.Track, s.trackStyle
	}
	if fillLen >= subcell {
		return s.glyphSet.ThumbLower[subcell-1], s.thumbStyle
	}
	if start == 0 {
		return s.glyphSet.ThumbUpper[fillLen-1], s.thumbStyle
	}
	return s.glyphSet.ThumbLower[fillLen-1], s.thumbStyle
}

// Draw draws the scroll bar.
func (s *ScrollBar) Draw(screen tcell.Screen) {
	s.DrawForSubclass(screen, s)

	x, y, _, height := s.GetInnerRect()
	if !s.Visible(height) {
		return
	}
	m := s.metrics(height)

	row := y
	if s.arrows.hasStart() {
		screen.SetContent(x, row, s.glyphSet.ArrowStart, nil, s.arrowStyle)
		row++
	}
	for cell := range m.trackCells {
		glyph, style := s.glyph(cellFill(m, cell))
		screen.SetContent(x, row, glyph, nil, style)
		row++
	}
	if s.arrows.hasEnd() {
		screen.SetContent(x, row, s.glyphSet.ArrowEnd, nil, s.arrowStyle)
	}
}

var _ Primitive = &ScrollBar{}
