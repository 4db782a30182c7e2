package vscroll

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

type Alignment int

const (
	AlignmentLeft Alignment = iota
	AlignmentCenter
	AlignmentRight
)

// Print prints text onto the screen into the given box at (x,y,maxWidth,1),
// not exceeding that box.
//
// Returns the number of actual bytes of the text printed and the actual width
// used for the printed grapheme clusters.
func Print(screen tcell.Screen, text string, x, y, maxWidth int, alignment Alignment, style tcell.Style) (int, int) {
	_, totalHeight := screen.Size()
	if maxWidth <= 0 || len(text) == 0 || y < 0 || y >= totalHeight {
		return 0, 0
	}

	textWidth := uniseg.StringWidth(text)
	switch alignment {
	case AlignmentRight:
		if textWidth < maxWidth {
			x += maxWidth - textWidth
			maxWidth = textWidth
		}
	case AlignmentCenter:
		if textWidth < maxWidth {
			x += (maxWidth - textWidth) / 2
			maxWidth = textWidth
		}
	}

	var printed, width int
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var boundaries int
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		clusterWidth := boundaries >> uniseg.ShiftWidth
		if width+clusterWidth > maxWidth {
			break
		}
		runes := []rune(cluster)
		if clusterWidth > 0 {
			screen.SetContent(x+width, y, runes[0], runes[1:], style)
			// To avoid undesired effects, we populate all cells of wide clusters.
			for offset := 1; offset < clusterWidth; offset++ {
				screen.SetContent(x+width+offset, y, ' ', nil, style)
			}
		}
		width += clusterWidth
		printed += len(cluster)
	}
	return printed, width
}

// PrintSimple prints white text to the screen at the given position.
func PrintSimple(screen tcell.Screen, text string, x, y int) {
	Print(screen, text, x, y, math.MaxInt32, AlignmentLeft, tcell.StyleDefault.Foreground(Styles.PrimaryTextColor))
}

// fill paints the rectangle with the given rune and style.
func fill(screen tcell.Screen, x, y, width, height int, r rune, style tcell.Style) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, r, nil, style)
		}
	}
}
