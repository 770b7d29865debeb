package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/ui"
)

const (
	// boxChrome is the width taken by "│ " and " │".
	boxChrome = 4
	// minBoxWidth fits "╭─ " + one title cell + " ╮".
	minBoxWidth  = 6
	minBoxHeight = 3
	ellipsis     = "…"
)

// panelKeys are the keys that expand the n-th panel in layout order.
// p, q and r are left out; they are commands.
const panelKeys = "123456789abcdefghijklmnostuvwxyz"

// PanelKey returns the expand key for the i-th panel, or "".
func PanelKey(i int) string {
	if i < 0 || i >= len(panelKeys) {
		return ""
	}
	return string(panelKeys[i])
}

// PanelIndex returns the layout index the key expands, or -1.
func PanelIndex(key string) int {
	if len(key) != 1 {
		return -1
	}
	return strings.Index(panelKeys, key)
}

// Window is a panel's rectangle in the frame, borders and padding included.
type Window struct {
	ID string
	X  int
	Y  int
	W  int
	H  int
}

// Contains reports whether the cell (x, y) falls inside w.
func (w Window) Contains(x, y int) bool {
	return x >= w.X && x < w.X+w.W && y >= w.Y && y < w.Y+w.H
}

// Geometry lays expr out on a width x height area. Rows split the height
// evenly and panels split their row's width evenly. An expanded panel takes
// the whole area. With a height override every row is sized to fit exactly
// that many content lines; rows that no longer fit are dropped.
func Geometry(st *DashboardState, width, height int) []Window {
	if width <= 0 || height <= 0 || len(st.Layout) == 0 {
		return nil
	}
	if id := st.Expanded(); id != "" {
		return []Window{{ID: id, W: width, H: height}}
	}

	rows := len(st.Layout)
	var out []Window
	y := 0
	for i, row := range st.Layout {
		h := share(height, rows, i)
		if st.MaxHeight > 0 {
			h = st.MaxHeight + 2
		}
		if y+h > height {
			h = height - y
		}
		if h < minBoxHeight {
			break
		}

		x := 0
		for j, id := range row {
			w := share(width, len(row), j)
			out = append(out, Window{ID: id, X: x, Y: y, W: w, H: h})
			x += w
		}
		y += h
	}
	return out
}

// share splits total into n parts, giving the remainder to the first parts.
func share(total, n, i int) int {
	s := total / n
	if i < total%n {
		s++
	}
	return s
}

// HitTest returns the panel id under (x, y), or "".
func HitTest(windows []Window, x, y int) string {
	for _, w := range windows {
		if w.Contains(x, y) {
			return w.ID
		}
	}
	return ""
}

// Render draws the dashboard body for a width x height area. It does no I/O
// and does not touch st, so the same inputs always give the same frame.
func Render(l *layout.Layout, st *DashboardState, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	keys := make(map[string]string)
	for i, id := range st.Layout.Panels() {
		keys[id] = PanelKey(i)
	}

	lines := make([]string, 0, height)
	windows := Geometry(st, width, height)
	for i := 0; i < len(windows); {
		// Windows in a row share Y and H.
		j := i
		for j < len(windows) && windows[j].Y == windows[i].Y {
			j++
		}
		row := make([][]string, 0, j-i)
		for _, w := range windows[i:j] {
			row = append(row, drawPanel(l, st, w, keys[w.ID]).lines)
		}
		for k := 0; k < windows[i].H; k++ {
			var b strings.Builder
			for _, cell := range row {
				b.WriteString(cell[k])
			}
			lines = append(lines, b.String())
		}
		i = j
	}

	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

// drawn is one rendered window plus its clipping accounting.
type drawn struct {
	lines   []string
	shown   int
	hidden  int
	trimmed bool
}

func drawPanel(l *layout.Layout, st *DashboardState, w Window, key string) drawn {
	ps := st.Lookup(w.ID)
	p, ok := l.Panels[w.ID]

	title := w.ID
	if ok {
		title = p.Title()
	}
	if key != "" {
		title = "[" + key + "] " + title
	}

	border := BorderStyle
	if ps != nil && ps.Expanded {
		border = ExpandedBorderStyle
	}

	var body []string
	var mark string
	switch {
	case ps == nil || (!ps.Loaded && ps.Err == nil):
		body = []string{MutedStyle.Render("loading" + ellipsis)}
	case ps.Err != nil && st.IgnoreErrors && ps.Loaded:
		mark = markStale
	case ps.Err != nil && st.Prominent(ps):
		mark = markError
		border = ErrorBorderStyle
		body = []string{ErrorStyle.Render(ui.SymbolFail + " " + errorLine(ps.Err))}
	case ps.Err != nil:
		body = []string{InlineErrorStyle.Render(ui.SymbolWarning + " " + errorLine(ps.Err))}
	}

	if ok && ps != nil && ps.Loaded {
		innerW, innerH := boxSize(w, st.Padding, 0).w-boxChrome, w.H-2
		if innerW > 0 && innerH > 0 {
			body = append(body, p.Render(ps.Content, innerW, innerH-len(body))...)
		}
	}

	return drawWindow(w, title, mark, body, st.Padding, border)
}

// errorLine reduces an error to one line for display inside a panel.
func errorLine(err error) string {
	msg := strings.ReplaceAll(err.Error(), ui.SymbolFail+" ", "")
	return strings.Join(strings.Fields(msg), " ")
}

type size struct {
	padX, padY int
	w, h       int
}

// boxSize returns the bordered box inside w for a body of n lines. Padding
// adds a blank column on each side when the box stays wide enough, and a
// blank row above and below only when the body leaves two rows spare. It
// never changes how many body lines fit.
func boxSize(w Window, padding bool, n int) size {
	s := size{w: w.W, h: w.H}
	if !padding {
		return s
	}
	if w.W-2 >= minBoxWidth {
		s.padX = 1
		s.w -= 2
	}
	if w.H-2 >= minBoxHeight && n <= w.H-4 {
		s.padY = 1
		s.h -= 2
	}
	return s
}

// drawWindow draws a rounded box with title on the top border, clips body to
// the inner area and marks the title when lines were hidden. Every returned
// line is exactly w.W cells wide and there are exactly w.H of them.
func drawWindow(w Window, title, mark string, body []string, padding bool, border lipgloss.Style) drawn {
	box := boxSize(w, padding, len(body))
	blankWin := strings.Repeat(" ", w.W)

	if box.w < minBoxWidth || box.h < minBoxHeight {
		lines := make([]string, w.H)
		for i := range lines {
			lines[i] = blankWin
		}
		return drawn{lines: lines, hidden: len(body), trimmed: len(body) > 0}
	}

	// The budget is taken from the unpadded window.
	innerW, innerH := box.w-boxChrome, w.H-2
	d := drawn{shown: len(body)}
	if len(body) > innerH {
		d.shown = innerH
		d.hidden = len(body) - innerH
		d.trimmed = true
		mark += markTrimmed
	}

	// "╭─ " + title + " " + fill + "╮"
	titleW := box.w - 5
	t := ansi.Truncate(title+mark, titleW, ellipsis)
	fill := titleW - ansi.StringWidth(t)
	top := border.Render(borderTopLeft+borderHorizontal+" ") +
		TitleStyle.Render(t) +
		border.Render(" "+strings.Repeat(borderHorizontal, fill)+borderTopRight)
	bottom := border.Render(borderBottomLeft + strings.Repeat(borderHorizontal, box.w-2) + borderBottomRight)
	side := border.Render(borderVertical)

	boxLines := make([]string, 0, box.h)
	boxLines = append(boxLines, top)
	for i := 0; i < box.h-2; i++ {
		line := ""
		if i < d.shown {
			line = body[i]
		}
		boxLines = append(boxLines, side+" "+fit(line, innerW)+" "+side)
	}
	boxLines = append(boxLines, bottom)

	padH := strings.Repeat(" ", box.padX)
	for i := 0; i < box.padY; i++ {
		d.lines = append(d.lines, blankWin)
	}
	for _, l := range boxLines {
		d.lines = append(d.lines, padH+l+padH)
	}
	for i := 0; i < box.padY; i++ {
		d.lines = append(d.lines, blankWin)
	}
	return d
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	s = ansi.Truncate(s, width, ellipsis)
	if gap := width - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
