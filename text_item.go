package vscroll

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// TextItem is an item view showing one line of text per item.
type TextItem[T any] struct {
	*Box

	format    func(ctx ItemContext[T]) string
	text      string
	width     int
	alignment Alignment
	style     tcell.Style
	striped   bool
	ctx       ItemContext[T]
}

// NewTextItem returns a text item rendering the text returned by format.
func NewTextItem[T any](format func(ctx ItemContext[T]) string) *TextItem[T] {
	return &TextItem[T]{
		Box:    NewBox(),
		format: format,
		style:  tcell.StyleDefault.Foreground(Styles.PrimaryTextColor),
	}
}

// TextTemplate returns a template creating text items with format.
func TextTemplate[T any](format func(ctx ItemContext[T]) string, opts ...func(*TextItem[T])) TemplateFunc[T] {
	return func() ItemView[T] {
		item := NewTextItem(format)
		for _, opt := range opts {
			opt(item)
		}
		return item
	}
}

// SetWidth sets the width of the item in horizontal viewports. Zero sizes
// the item to its text.
func (t *TextItem[T]) SetWidth(width int) *TextItem[T] {
	t.width = max(width, 0)
	return t
}

func (t *TextItem[T]) SetAlignment(alignment Alignment) *TextItem[T] {
	t.alignment = alignment
	return t
}

func (t *TextItem[T]) SetTextStyle(style tcell.Style) *TextItem[T] {
	t.style = style
	return t
}

// SetStriped alternates the background of odd items.
func (t *TextItem[T]) SetStriped(striped bool) *TextItem[T] {
	t.striped = striped
	return t
}

// Text returns the text of the bound item.
func (t *TextItem[T]) Text() string {
	return t.text
}

// Context returns the context the item is bound to.
func (t *TextItem[T]) Context() ItemContext[T] {
	return t.ctx
}

// Update implements ItemView.
func (t *TextItem[T]) Update(ctx ItemContext[T]) {
	t.ctx = ctx
	text := t.format(ctx)
	if text != t.text {
		t.text = text
		t.MarkDirty()
	}

	background := Styles.PrimitiveBackgroundColor
	if t.striped && ctx.Odd() {
		background = Styles.ContrastBackgroundColor
	}
	t.SetBackgroundColor(background)
}

// Size implements ItemView.
func (t *TextItem[T]) Size(orientation Orientation, _ int) int {
	if orientation == OrientationVertical {
		return 1
	}
	if t.width > 0 {
		return t.width
	}
	return uniseg.StringWidth(t.text) + 1
}

// Draw draws the text on the first line of the item.
func (t *TextItem[T]) Draw(screen tcell.Screen) {
	t.DrawForSubclass(screen, t)
	x, y, width, _ := t.GetInnerRect()
	Print(screen, t.text, x, y, width, t.alignment, t.style.Background(t.GetBackgroundColor()))
	t.MarkClean()
}

var _ ItemView[string] = &TextItem[string]{}
