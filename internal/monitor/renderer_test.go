package monitor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedState(t *testing.T, l *layout.Layout, lines int) *DashboardState {
	t.Helper()
	st := NewState(l.Expr)
	for _, id := range l.Expr.Panels() {
		c := panels.Content{Summary: id + " ok"}
		for i := 0; i < lines; i++ {
			c.Fields = append(c.Fields, panels.Field{Name: "row", Value: id})
		}
		st.Apply(id, c, nil, time.Unix(0, 0))
	}
	return st
}

func assertFrameSize(t *testing.T, frame string, width, height int) {
	t.Helper()
	lines := strings.Split(frame, "\n")
	require.Len(t, lines, height)
	for i, l := range lines {
		assert.Equal(t, width, lipgloss.Width(l), "line %d: %q", i, l)
	}
}

func TestRender_Deterministic(t *testing.T) {
	f := &fakeCluster{}
	l := f.layout(t, "a,b:c")
	st := loadedState(t, l, 3)
	st.Apply("b", panels.Content{}, errors.New("boom"), time.Unix(1, 0))

	first := Render(l, st, 81, 23)
	second := Render(l, st, 81, 23)
	assert.Equal(t, first, second)
	assertFrameSize(t, first, 81, 23)
	assert.Len(t, st.Panels, 3, "render does not add state")
}

func TestRender_FrameSizes(t *testing.T) {
	f := &fakeCluster{}
	l := f.layout(t, "a,b,c:a:b,c")
	for _, size := range [][2]int{{80, 24}, {33, 17}, {120, 9}, {7, 3}} {
		st := loadedState(t, l, 20)
		assertFrameSize(t, Render(l, st, size[0], size[1]), size[0], size[1])

		st.Padding = true
		assertFrameSize(t, Render(l, st, size[0], size[1]), size[0], size[1])

		st.MaxHeight = 2
		assertFrameSize(t, Render(l, st, size[0], size[1]), size[0], size[1])
	}
}

func TestRender_TrimmedMarker(t *testing.T) {
	f := &fakeCluster{}
	l := f.layout(t, "a:b")

	st := loadedState(t, l, 1)
	assert.NotContains(t, Render(l, st, 60, 20), "(trimmed)")

	st = loadedState(t, l, 30)
	frame := Render(l, st, 60, 20)
	assert.Contains(t, frame, "[1] Panel A (trimmed)")
	assert.Contains(t, frame, "[2] Panel B (trimmed)")
}

func TestRender_Expanded(t *testing.T) {
	f := &fakeCluster{}
	l := f.layout(t, "a,b:c")
	st := loadedState(t, l, 30)
	st.ToggleExpand("c")

	frame := Render(l, st, 60, 40)
	assert.Contains(t, frame, "[3] Panel C")
	assert.NotContains(t, frame, "Panel A")
	assert.NotContains(t, frame, "(trimmed)", "30 rows fit in the full frame")
}

func TestDrawWindow_PaddingKeepsAccounting(t *testing.T) {
	lines := func(n int) []string {
		body := make([]string, n)
		for i := range body {
			body[i] = "line"
		}
		return body
	}

	tests := []struct {
		name    string
		w       Window
		n       int
		shown   int
		trimmed bool
		padRows bool
	}{
		{"fills the window", Window{W: 30, H: 7}, 5, 5, false, false},
		{"overflows", Window{W: 30, H: 8}, 10, 6, true, false},
		{"leaves spare rows", Window{W: 30, H: 8}, 4, 4, false, true},
		{"one short of spare", Window{W: 30, H: 8}, 5, 5, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := lines(tt.n)
			plain := drawWindow(tt.w, "T", "", body, false, BorderStyle)
			padded := drawWindow(tt.w, "T", "", body, true, BorderStyle)

			for _, d := range []drawn{plain, padded} {
				assert.Equal(t, tt.shown, d.shown)
				assert.Equal(t, tt.n-tt.shown, d.hidden)
				assert.Equal(t, tt.trimmed, d.trimmed)
				require.Len(t, d.lines, tt.w.H)
				for _, l := range d.lines {
					assert.Equal(t, tt.w.W, lipgloss.Width(l))
				}
			}
			assert.Equal(t, plain.trimmed, strings.Contains(plain.lines[0], "(trimmed)"))

			blank := strings.Repeat(" ", tt.w.W)
			if tt.padRows {
				assert.Equal(t, blank, padded.lines[0])
				assert.True(t, strings.HasPrefix(padded.lines[1], " ╭─ T"))
			} else {
				assert.True(t, strings.HasPrefix(padded.lines[0], " ╭─ T"))
			}
		})
	}
}

func TestRender_PaddingKeepsTrimmedMarker(t *testing.T) {
	f := &fakeCluster{}
	l := f.layout(t, "a:b")

	for _, rows := range []int{1, 6, 7, 8, 30} {
		st := loadedState(t, l, rows)
		plain := Render(l, st, 60, 20)
		st.Padding = true
		padded := Render(l, st, 60, 20)
		assert.Equal(t, strings.Count(plain, "(trimmed)"), strings.Count(padded, "(trimmed)"), "%d rows", rows)
		assert.Equal(t, strings.Count(plain, "row "), strings.Count(padded, "row "), "%d rows", rows)
	}
}

func TestDrawWindow_Layout(t *testing.T) {
	d := drawWindow(Window{W: 12, H: 4}, "Members", "", []string{"a very long line"}, false, BorderStyle)
	assert.Equal(t, []string{
		"╭─ Members ╮",
		"│ a very … │",
		"│          │",
		"╰──────────╯",
	}, d.lines)
}

func TestGeometry(t *testing.T) {
	st := NewState(layout.Expr{{"a", "b"}, {"c"}})

	assert.Equal(t, []Window{
		{ID: "a", X: 0, Y: 0, W: 41, H: 12},
		{ID: "b", X: 41, Y: 0, W: 40, H: 12},
		{ID: "c", X: 0, Y: 12, W: 81, H: 11},
	}, Geometry(st, 81, 23))

	st.MaxHeight = 4
	ws := Geometry(st, 80, 24)
	require.Len(t, ws, 3)
	assert.Equal(t, 6, ws[0].H)
	assert.Equal(t, 6, ws[2].Y)

	st.Padding = true
	ws = Geometry(st, 80, 24)
	assert.Equal(t, 6, ws[0].H, "padding never changes the row budget")

	st.MaxHeight = 20
	ws = Geometry(st, 80, 24)
	require.Len(t, ws, 2, "rows that no longer fit are dropped")

	st.ToggleExpand("b")
	assert.Equal(t, []Window{{ID: "b", W: 80, H: 24}}, Geometry(st, 80, 24))
}

func TestHitTest(t *testing.T) {
	ws := Geometry(NewState(layout.Expr{{"a", "b"}, {"c"}}), 80, 24)
	assert.Equal(t, "a", HitTest(ws, 0, 0))
	assert.Equal(t, "b", HitTest(ws, 79, 11))
	assert.Equal(t, "c", HitTest(ws, 40, 12))
	assert.Equal(t, "", HitTest(ws, 80, 0))
}

func TestPanelKeys(t *testing.T) {
	assert.Equal(t, "1", PanelKey(0))
	assert.Equal(t, "a", PanelKey(9))
	assert.Equal(t, "", PanelKey(-1))
	assert.Equal(t, "", PanelKey(len(panelKeys)))
	assert.Equal(t, 9, PanelIndex("a"))
	for _, k := range []string{KeyPadding, KeyQuit, KeyRefresh, "0", "ab"} {
		assert.Equal(t, -1, PanelIndex(k), k)
	}
}

func TestErrorLine(t *testing.T) {
	err := &panels.FetchError{Panel: "members", Err: errors.New("✗ Request failed\n\n  dial tcp: refused\n")}
	assert.Equal(t, "members: Request failed dial tcp: refused", errorLine(err))
}
