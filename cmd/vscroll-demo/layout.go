package main

import (
	"math/rand/v2"

	"github.com/ayn2op/vscroll"
	"github.com/ayn2op/vscroll/help"
	"github.com/ayn2op/vscroll/keybind"
	"github.com/gdamore/tcell/v2"
)

type keyMap struct {
	vscroll.ViewportKeyMap
	Jump keybind.Keybind
	Help keybind.Keybind
	Quit keybind.Keybind
}

func newKeyMap(viewportKeys vscroll.ViewportKeyMap) keyMap {
	return keyMap{
		ViewportKeyMap: viewportKeys,
		Jump: keybind.NewKeybind(
			keybind.WithKeys("r"),
			keybind.WithHelp("r", "random row"),
		),
		Help: keybind.NewKeybind(
			keybind.WithKeys("?"),
			keybind.WithHelp("?", "toggle help"),
		),
		Quit: keybind.NewKeybind(
			keybind.WithKeys("q", "ctrl+c"),
			keybind.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []keybind.Keybind {
	return append(k.ViewportKeyMap.ShortHelp(), k.Help, k.Quit)
}

func (k keyMap) FullHelp() [][]keybind.Keybind {
	return append(k.ViewportKeyMap.FullHelp(), []keybind.Keybind{k.Jump, k.Help, k.Quit})
}

// layout stacks the viewport above the help bar, which also shows the
// scrolled index.
type layout struct {
	*vscroll.Box
	viewport *vscroll.Viewport
	help     *help.Help
	keys     keyMap
	index    int
}

func newLayout(viewport *vscroll.Viewport) *layout {
	keys := newKeyMap(viewport.KeyMap())
	viewport.SetBorders(vscroll.BordersAll).SetBorderSet(vscroll.BorderSetRound())
	return &layout{
		Box:      vscroll.NewBox(),
		viewport: viewport,
		help:     help.New().SetKeyMap(keys),
		keys:     keys,
	}
}

func (l *layout) setScrolledIndex(index int) {
	l.index = index
	l.help.SetPosition(index, l.viewport.GetDataLength())
}

func (l *layout) SetRect(x, y, width, height int) {
	l.Box.SetRect(x, y, width, height)
	helpHeight := min(l.help.Height(width), height)
	l.viewport.SetRect(x, y, width, height-helpHeight)
	l.help.SetRect(x, y+height-helpHeight, width, helpHeight)
}

// HasFocus reports true while the viewport has focus so that key events
// keep reaching the layout.
func (l *layout) HasFocus() bool {
	return l.Box.HasFocus() || l.viewport.HasFocus()
}

func (l *layout) IsDirty() bool {
	return l.Box.IsDirty() || l.viewport.IsDirty() || l.help.IsDirty()
}

func (l *layout) Draw(screen tcell.Screen) {
	// The length changes without scrolling when items are appended.
	l.help.SetPosition(l.index, l.viewport.GetDataLength())
	l.viewport.Draw(screen)
	l.help.Draw(screen)
	l.MarkClean()
}

func (l *layout) InputHandler(event *tcell.EventKey) vscroll.Command {
	switch {
	case keybind.Matches(event, l.keys.Quit):
		return vscroll.QuitCommand{}
	case keybind.Matches(event, l.keys.Help):
		l.help.SetShowAll(!l.help.ShowAll())
		x, y, width, height := l.GetRect()
		l.SetRect(x, y, width, height)
		return vscroll.RedrawCommand{}
	case keybind.Matches(event, l.keys.Jump):
		if length := l.viewport.GetDataLength(); length > 0 {
			l.viewport.ScrollToIndex(rand.IntN(length), vscroll.ScrollSmooth)
		}
		return vscroll.RedrawCommand{}
	}
	return l.viewport.InputHandler(event)
}

func (l *layout) MouseHandler(action vscroll.MouseAction, event *tcell.EventMouse) (vscroll.Primitive, vscroll.Command) {
	return l.viewport.MouseHandler(action, event)
}
