// Package help draws the status bar below a viewport: the key bindings of a
// KeyMap on the left and the scroll position on the right. Bindings are shown
// on one line, or with ShowAll as one column per binding group.
package help

import (
	"strconv"
	"strings"

	"github.com/ayn2op/vscroll"
	"github.com/ayn2op/vscroll/keybind"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// KeyMap is implemented by primitives that expose their key bindings.
// vscroll.ViewportKeyMap groups its bindings by scroll unit.
type KeyMap interface {
	// ShortHelp returns the bindings shown on a single line.
	ShortHelp() []keybind.Keybind
	// FullHelp returns binding groups, each drawn as a column.
	FullHelp() [][]keybind.Keybind
}

const (
	separator = " · "
	columnGap = "   "
	ellipsis  = "…"
)

var ellipsisWidth = uniseg.StringWidth(ellipsis)

// Help is a primitive showing key bindings and a scroll position.
type Help struct {
	*vscroll.Box
	Styles Styles

	keyMap  KeyMap
	showAll bool
	status  string
}

// New returns a help bar in short mode.
func New() *Help {
	return &Help{
		Box:    vscroll.NewBox(),
		Styles: DefaultStyles(),
	}
}

// SetKeyMap sets the bindings to show.
func (h *Help) SetKeyMap(keyMap KeyMap) *Help {
	h.keyMap = keyMap
	h.MarkDirty()
	return h
}

// SetShowAll switches between the single line and the grouped columns.
func (h *Help) SetShowAll(showAll bool) *Help {
	if h.showAll != showAll {
		h.showAll = showAll
		h.MarkDirty()
	}
	return h
}

func (h *Help) ShowAll() bool {
	return h.showAll
}

// SetPosition shows index, counted from zero, as a position out of count
// items. Nothing is shown while count is zero.
func (h *Help) SetPosition(index, count int) *Help {
	status := ""
	if count > 0 {
		index = min(max(index, 0), count-1)
		status = strconv.Itoa(index+1) + "/" + strconv.Itoa(count)
	}
	if status != h.status {
		h.status = status
		h.MarkDirty()
	}
	return h
}

// Status returns the position as drawn.
func (h *Help) Status() string {
	return h.status
}

// Height returns the number of rows the help bar needs at width.
func (h *Help) Height(width int) int {
	if h.keyMap == nil && h.status == "" {
		return 0
	}
	return max(len(h.layout(width)), 1)
}

// Lines returns the rows drawn at width as plain text.
func (h *Help) Lines(width int) []string {
	rows := h.layout(width)
	lines := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for _, s := range row {
			b.WriteString(s.text)
		}
		lines[i] = b.String()
	}
	return lines
}

func (h *Help) Draw(screen tcell.Screen) {
	h.DrawForSubclass(screen, h)

	x, y, width, height := h.GetInnerRect()
	for i, row := range h.layout(width) {
		if i >= height {
			break
		}
		col := x
		for _, s := range row {
			_, w := vscroll.Print(screen, s.text, col, y+i, x+width-col, vscroll.AlignmentLeft, s.style)
			col += w
		}
	}
	h.MarkClean()
}

type span struct {
	text  string
	style tcell.Style
}

type row []span

func (r row) width() int {
	w := 0
	for _, s := range r {
		w += uniseg.StringWidth(s.text)
	}
	return w
}

// layout lays out the bindings in the space left of the status and puts the
// status at the right end of the first row.
func (h *Help) layout(width int) []row {
	if width <= 0 {
		return nil
	}

	statusWidth := uniseg.StringWidth(h.status)
	avail := width
	if h.status != "" && statusWidth < width {
		avail -= statusWidth + 1
	}

	var rows []row
	if h.keyMap != nil {
		if h.showAll {
			rows = h.columns(h.keyMap.FullHelp(), avail)
		} else if line := h.line(h.keyMap.ShortHelp(), avail); len(line) > 0 {
			rows = []row{line}
		}
	}

	if h.status == "" || statusWidth > width {
		return rows
	}
	if len(rows) == 0 {
		rows = []row{nil}
	}
	first := rows[0]
	if pad := width - statusWidth - first.width(); pad > 0 {
		first = append(first, span{text: strings.Repeat(" ", pad)})
	}
	rows[0] = append(first, span{text: h.status, style: h.Styles.Status})
	return rows
}

// line joins the enabled bindings until the next one would not fit within
// avail, marking the cut with an ellipsis when there is room for it.
func (h *Help) line(bindings []keybind.Keybind, avail int) row {
	var out row
	cut := false
	for _, kb := range enabled(bindings) {
		item := h.item(kb)
		if len(out) > 0 {
			item = append(row{{text: separator, style: h.Styles.Separator}}, item...)
		}
		if out.width()+item.width() > avail {
			cut = true
			break
		}
		out = append(out, item...)
	}
	if cut && len(out) > 0 && out.width()+1+ellipsisWidth <= avail {
		out = append(out, span{text: " " + ellipsis, style: h.Styles.Ellipsis})
	}
	return out
}

func (h *Help) item(kb keybind.Keybind) row {
	help := kb.Help()
	switch {
	case help.Key == "":
		return row{{text: help.Desc, style: h.Styles.Desc}}
	case help.Desc == "":
		return row{{text: help.Key, style: h.Styles.Key}}
	default:
		return row{{text: help.Key, style: h.Styles.Key}, {text: " " + help.Desc, style: h.Styles.Desc}}
	}
}

type column struct {
	bindings []keybind.Help
	keyWidth int
	width    int
}

func newColumn(group []keybind.Keybind) column {
	var c column
	for _, kb := range enabled(group) {
		help := kb.Help()
		c.bindings = append(c.bindings, help)
		c.keyWidth = max(c.keyWidth, uniseg.StringWidth(help.Key))
	}
	for _, help := range c.bindings {
		c.width = max(c.width, c.keyWidth+1+uniseg.StringWidth(help.Desc))
	}
	return c
}

// columns lays out one column per group, dropping the groups that do not fit
// within avail.
func (h *Help) columns(groups [][]keybind.Keybind, avail int) []row {
	var cols []column
	used := 0
	cut := false
	for _, group := range groups {
		c := newColumn(group)
		if len(c.bindings) == 0 {
			continue
		}
		w := c.width
		if len(cols) > 0 {
			w += len(columnGap)
		}
		if used+w > avail {
			cut = true
			break
		}
		cols = append(cols, c)
		used += w
	}
	if len(cols) == 0 {
		if cut && avail >= ellipsisWidth {
			return []row{{{text: ellipsis, style: h.Styles.Ellipsis}}}
		}
		return nil
	}

	height := 0
	for _, c := range cols {
		height = max(height, len(c.bindings))
	}
	rows := make([]row, height)
	for i := range rows {
		// pending holds the blank cells and padding before the next binding,
		// so that rows never end in whitespace.
		var pending string
		for j, c := range cols {
			if j > 0 {
				pending += columnGap
			}
			if i >= len(c.bindings) {
				pending += strings.Repeat(" ", c.width)
				continue
			}
			if pending != "" {
				rows[i] = append(rows[i], span{text: pending})
			}
			help := c.bindings[i]
			keyWidth := uniseg.StringWidth(help.Key)
			rows[i] = append(rows[i], span{text: help.Key, style: h.Styles.Key})
			if help.Desc == "" {
				pending = strings.Repeat(" ", c.width-keyWidth)
				continue
			}
			desc := strings.Repeat(" ", c.keyWidth-keyWidth+1) + help.Desc
			rows[i] = append(rows[i], span{text: desc, style: h.Styles.Desc})
			pending = strings.Repeat(" ", c.width-c.keyWidth-1-uniseg.StringWidth(help.Desc))
		}
	}
	if cut && rows[0].width()+1+ellipsisWidth <= avail {
		rows[0] = append(rows[0], span{text: " " + ellipsis, style: h.Styles.Ellipsis})
	}
	return rows
}

func enabled(bindings []keybind.Keybind) []keybind.Keybind {
	out := make([]keybind.Keybind, 0, len(bindings))
	for _, kb := range bindings {
		help := kb.Help()
		if kb.Enabled() && (help.Key != "" || help.Desc != "") {
			out = append(out, kb)
		}
	}
	return out
}
