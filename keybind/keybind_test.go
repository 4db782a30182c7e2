package keybind

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"  ":            "",
		"j":             "j",
		"G":             "G",
		"+":             "+",
		"Down":          "down",
		"escape":        "esc",
		"Return":        "enter",
		"PageDown":      "pgdn",
		"space":         " ",
		"Rune[x]":       "x",
		"backtab":       "shift+tab",
		"Ctrl+D":        "ctrl+d",
		"control+d":     "ctrl+d",
		"shift+ctrl+A":  "ctrl+shift+a",
		"ctrl + ctrl+b": "ctrl+b",
		"ctrl+":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeKey(in), "normalizeKey(%q)", in)
	}
}

func TestMatches(t *testing.T) {
	down := NewKeybind(WithKeys("down", "j"), WithHelp("↓/j", "down"))
	page := NewKeybind(WithKeys("ctrl+d", "space"))
	back := NewKeybind(WithKeys("shift+tab"))
	alt := NewKeybind(WithKeys("alt+x"))

	tests := []struct {
		name  string
		event *tcell.EventKey
		bind  Keybind
		want  bool
	}{
		{"arrow", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), down, true},
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), down, true},
		{"other rune", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), down, false},
		{"ctrl", tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl), page, true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), page, true},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModShift), back, true},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), alt, true},
		{"rune without alt", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), alt, false},
		{"nil event", nil, down, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.event, tt.bind))
		})
	}
}

func TestKeybindEnabled(t *testing.T) {
	k := NewKeybind(WithKeys("q"), WithDisabled())
	assert.False(t, k.Enabled())
	assert.False(t, Matches(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), k))

	k.SetEnabled(true)
	assert.True(t, k.Enabled())
	assert.True(t, Matches(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), k))

	k.SetKeys()
	assert.False(t, k.Enabled())

	k.SetKeys("Q", "  ")
	assert.Equal(t, []string{"Q"}, k.Keys())

	k.SetHelp("Q", "quit")
	assert.Equal(t, Help{Key: "Q", Desc: "quit"}, k.Help())
}
