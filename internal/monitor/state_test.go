package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_LazyEntries(t *testing.T) {
	st := NewState(layout.Expr{{"a", "b"}})
	assert.Empty(t, st.Panels)
	assert.Nil(t, st.Lookup("a"))

	require.NotNil(t, st.Panel("a"))
	assert.Len(t, st.Panels, 1)
	assert.Nil(t, st.Panel("zzz"), "ids outside the layout get no entry")
	assert.Len(t, st.Panels, 1)
}

func TestState_SetLayoutClears(t *testing.T) {
	st := NewState(layout.Expr{{"a"}})
	st.ToggleExpand("a")
	st.SetLayout(layout.Expr{{"b"}})
	assert.Empty(t, st.Panels)
	assert.Equal(t, "", st.Expanded())
	assert.False(t, st.ToggleExpand("a"))
}

func TestState_ToggleExpandIsExclusive(t *testing.T) {
	st := NewState(layout.Expr{{"a", "b"}, {"c"}})
	st.ToggleExpand("a")
	st.ToggleExpand("c")
	assert.Equal(t, "c", st.Expanded())
	assert.False(t, st.Panel("a").Expanded)

	st.ToggleExpand("c")
	assert.Equal(t, "", st.Expanded())
}

func TestState_AdjustHeight(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		base  int
		limit int
		want  int
	}{
		{"starts from base", 0, 1, 10, 40, 11},
		{"moves override", 5, -1, 10, 40, 4},
		{"floor", 3, -1, 10, 40, MinHeight},
		{"ceiling", 40, 1, 10, 40, 40},
		{"tiny terminal", 0, 1, 10, 1, MinHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState(layout.Expr{{"a"}})
			st.MaxHeight = tt.start
			st.AdjustHeight(tt.delta, tt.base, tt.limit)
			assert.Equal(t, tt.want, st.MaxHeight)
		})
	}
}

func TestState_ApplyAndProminence(t *testing.T) {
	st := NewState(layout.Expr{{"a"}})
	boom := errors.New("boom")
	at := time.Unix(10, 0)

	st.Apply("a", panels.Content{}, boom, at)
	ps := st.Lookup("a")
	assert.Equal(t, 1, ps.Failures)
	assert.False(t, st.Prominent(ps))

	st.Apply("a", panels.Content{}, boom, at)
	assert.True(t, st.Prominent(ps))

	st.IgnoreErrors = true
	assert.True(t, st.Prominent(ps), "nothing loaded yet")

	st.Apply("a", panels.Content{Summary: "ok"}, nil, at)
	assert.Equal(t, 0, ps.Failures)
	assert.Nil(t, ps.Err)
	assert.True(t, ps.Loaded)

	st.Apply("a", panels.Content{}, boom, at)
	st.Apply("a", panels.Content{}, boom, at)
	assert.False(t, st.Prominent(ps))
	assert.Equal(t, "ok", ps.Content.Summary, "stale content kept")

	st.Apply("zzz", panels.Content{}, nil, at)
	assert.Nil(t, st.Lookup("zzz"))
}
