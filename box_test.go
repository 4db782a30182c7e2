package vscroll

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestBoxDrawBordersAndTitle(t *testing.T) {
	screen := newTestScreen(t, 8, 4)
	for y := range 4 {
		for x := range 8 {
			screen.SetContent(x, y, 'x', nil, tcell.StyleDefault)
		}
	}

	b := NewBox().SetBorders(BordersAll).SetBorderSet(BorderSetRound()).SetBackgroundColor(tcell.ColorBlue)
	b.SetTitle("ab")
	b.SetRect(0, 0, 6, 4)
	b.Draw(screen)

	assert.Equal(t, "╭─ab─╮xx", screenRow(screen, 0))
	assert.Equal(t, "│    │xx", screenRow(screen, 1))
	assert.Equal(t, "│    │xx", screenRow(screen, 2))
	assert.Equal(t, "╰────╯xx", screenRow(screen, 3))

	_, _, style, _ := screen.GetContent(2, 1)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorBlue, bg)
}

func TestBoxDrawPartialBorders(t *testing.T) {
	screen := newTestScreen(t, 5, 3)

	b := NewBox().SetBorders(BordersTop | BordersBottom)
	b.SetRect(0, 0, 5, 3)
	b.Draw(screen)

	assert.Equal(t, " ─── ", screenRow(screen, 0))
	assert.Equal(t, "     ", screenRow(screen, 1))
	assert.Equal(t, " ─── ", screenRow(screen, 2))
}

func TestBoxDontClearKeepsContent(t *testing.T) {
	screen := newTestScreen(t, 3, 1)
	screen.SetContent(1, 0, 'x', nil, tcell.StyleDefault)

	b := NewBox().SetDontClear(true)
	b.SetRect(0, 0, 3, 1)
	b.Draw(screen)

	r, _, _, _ := screen.GetContent(1, 0)
	assert.Equal(t, 'x', r)
}
