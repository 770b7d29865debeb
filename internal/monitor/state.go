package monitor

import (
	"time"

	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/panels"
)

// MinHeight is the smallest content height the height override allows.
const MinHeight = 3

// PanelState is the per-panel part of DashboardState.
type PanelState struct {
	Expanded bool

	// Content is the last successful fetch. It stays after a failure so the
	// panel can show stale data.
	Content panels.Content
	Loaded  bool

	Err       error
	Failures  int // consecutive
	UpdatedAt time.Time
}

// DashboardState is owned by the refresh/input loop. Nothing else mutates it.
type DashboardState struct {
	Layout layout.Expr
	Panels map[string]*PanelState

	// MaxHeight overrides how many content rows every panel gets. 0 means none.
	MaxHeight int
	Padding   bool

	// IgnoreErrors keeps showing stale content once a panel has loaded.
	IgnoreErrors bool
}

// NewState creates state for expr. Panel entries are added on first use.
func NewState(expr layout.Expr) *DashboardState {
	return &DashboardState{Layout: expr, Panels: make(map[string]*PanelState)}
}

// Panel returns the entry for id, creating it if id is in the layout.
// It returns nil for ids outside the layout.
func (s *DashboardState) Panel(id string) *PanelState {
	if ps, ok := s.Panels[id]; ok {
		return ps
	}
	if !s.Layout.Contains(id) {
		return nil
	}
	ps := &PanelState{}
	s.Panels[id] = ps
	return ps
}

// Lookup returns the entry for id without creating one.
func (s *DashboardState) Lookup(id string) *PanelState {
	return s.Panels[id]
}

// SetLayout switches layouts and drops every panel entry.
func (s *DashboardState) SetLayout(expr layout.Expr) {
	s.Layout = expr
	s.Panels = make(map[string]*PanelState)
}

// Expanded returns the expanded panel id, or "".
func (s *DashboardState) Expanded() string {
	for _, id := range s.Layout.Panels() {
		if ps := s.Panels[id]; ps != nil && ps.Expanded {
			return id
		}
	}
	return ""
}

// ToggleExpand flips id's expansion. Expanding one panel collapses the rest.
// It reports false when id is not in the layout.
func (s *DashboardState) ToggleExpand(id string) bool {
	ps := s.Panel(id)
	if ps == nil {
		return false
	}
	expand := !ps.Expanded
	for _, other := range s.Panels {
		other.Expanded = false
	}
	ps.Expanded = expand
	return true
}

// AdjustHeight moves the height override by delta, starting from base when
// no override is set, and clamps it to [MinHeight, limit].
func (s *DashboardState) AdjustHeight(delta, base, limit int) {
	h := s.MaxHeight
	if h == 0 {
		h = base
	}
	h += delta
	if limit < MinHeight {
		limit = MinHeight
	}
	switch {
	case h < MinHeight:
		h = MinHeight
	case h > limit:
		h = limit
	}
	s.MaxHeight = h
}

// ResetHeight removes the height override.
func (s *DashboardState) ResetHeight() {
	s.MaxHeight = 0
}

// Apply records one fetch result for id.
func (s *DashboardState) Apply(id string, c panels.Content, err error, at time.Time) {
	ps := s.Panel(id)
	if ps == nil {
		return
	}
	ps.UpdatedAt = at
	if err != nil {
		ps.Err = err
		ps.Failures++
		return
	}
	ps.Content = c
	ps.Loaded = true
	ps.Err = nil
	ps.Failures = 0
}

// Prominent reports whether ps's error should be highlighted: after two
// consecutive failures, unless errors are ignored and the panel has loaded.
func (s *DashboardState) Prominent(ps *PanelState) bool {
	if ps == nil || ps.Err == nil {
		return false
	}
	if s.IgnoreErrors && ps.Loaded {
		return false
	}
	return ps.Failures >= 2
}
