package help

import (
	"github.com/ayn2op/vscroll"
	"github.com/gdamore/tcell/v2"
)

type Styles struct {
	Key       tcell.Style
	Desc      tcell.Style
	Separator tcell.Style
	Ellipsis  tcell.Style
	Status    tcell.Style
}

// DefaultStyles dims everything but the descriptions and the position.
func DefaultStyles() Styles {
	normal := tcell.StyleDefault.
		Foreground(vscroll.Styles.PrimaryTextColor).
		Background(vscroll.Styles.PrimitiveBackgroundColor)
	dim := normal.Foreground(vscroll.Styles.SecondaryTextColor)
	return Styles{
		Key:       dim,
		Desc:      normal,
		Separator: dim,
		Ellipsis:  dim,
		Status:    normal.Bold(true),
	}
}
