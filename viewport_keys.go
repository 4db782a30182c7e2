package vscroll

import "github.com/ayn2op/vscroll/keybind"

// ViewportKeyMap holds the key bindings of a Viewport.
type ViewportKeyMap struct {
	ScrollBackward keybind.Keybind
	ScrollForward  keybind.Keybind
	PageBackward   keybind.Keybind
	PageForward    keybind.Keybind
	Start          keybind.Keybind
	End            keybind.Keybind
}

// DefaultViewportKeyMap returns arrow, page and vi-style bindings.
func DefaultViewportKeyMap() ViewportKeyMap {
	return ViewportKeyMap{
		ScrollBackward: keybind.NewKeybind(
			keybind.WithKeys("up", "left", "k"),
			keybind.WithHelp("↑/k", "scroll up"),
		),
		ScrollForward: keybind.NewKeybind(
			keybind.WithKeys("down", "right", "j"),
			keybind.WithHelp("↓/j", "scroll down"),
		),
		PageBackward: keybind.NewKeybind(
			keybind.WithKeys("pgup", "ctrl+b"),
			keybind.WithHelp("pgup", "page up"),
		),
		PageForward: keybind.NewKeybind(
			keybind.WithKeys("pgdn", "ctrl+f", "space"),
			keybind.WithHelp("pgdn", "page down"),
		),
		Start: keybind.NewKeybind(
			keybind.WithKeys("home", "g"),
			keybind.WithHelp("g/home", "go to start"),
		),
		End: keybind.NewKeybind(
			keybind.WithKeys("end", "G"),
			keybind.WithHelp("G/end", "go to end"),
		),
	}
}

// ShortHelp returns the bindings shown in one-line help.
func (k ViewportKeyMap) ShortHelp() []keybind.Keybind {
	return []keybind.Keybind{k.ScrollBackward, k.ScrollForward, k.Start, k.End}
}

// FullHelp returns all bindings grouped in columns.
func (k ViewportKeyMap) FullHelp() [][]keybind.Keybind {
	return [][]keybind.Keybind{
		{k.ScrollBackward, k.ScrollForward},
		{k.PageBackward, k.PageForward},
		{k.Start, k.End},
	}
}
