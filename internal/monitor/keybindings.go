package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitEsc     = "esc"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyPadding     = "p"
	KeyTaller      = "+"
	KeyTallerAlt   = "="
	KeyShorter     = "-"
	KeyResetHeight = "0"
	KeyToggleHelp  = "?"
)

// keyMap feeds the footer and the help overlay.
type keyMap struct {
	Expand      key.Binding
	Refresh     key.Binding
	Padding     key.Binding
	Taller      key.Binding
	Shorter     key.Binding
	ResetHeight key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	expandKeys := make([]string, len(panelKeys))
	for i := range panelKeys {
		expandKeys[i] = string(panelKeys[i])
	}
	return keyMap{
		Expand:      key.NewBinding(key.WithKeys(expandKeys...), key.WithHelp("1-9 a-z", "expand panel")),
		Refresh:     key.NewBinding(key.WithKeys(KeyRefresh), key.WithHelp(KeyRefresh, "refresh")),
		Padding:     key.NewBinding(key.WithKeys(KeyPadding), key.WithHelp(KeyPadding, "padding")),
		Taller:      key.NewBinding(key.WithKeys(KeyTaller, KeyTallerAlt), key.WithHelp("+", "taller")),
		Shorter:     key.NewBinding(key.WithKeys(KeyShorter), key.WithHelp("-", "shorter")),
		ResetHeight: key.NewBinding(key.WithKeys(KeyResetHeight), key.WithHelp("0", "reset height")),
		Help:        key.NewBinding(key.WithKeys(KeyToggleHelp), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys(KeyQuit, KeyQuitEsc, KeyQuitAlt), key.WithHelp("q/esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Expand, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Expand, k.Refresh, k.Padding},
		{k.Taller, k.Shorter, k.ResetHeight},
		{k.Help, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input. It returns true if the key was handled.
// No key other than refresh starts a fetch; everything else redraws from the
// content already held in state.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	k := msg.String()

	// Help toggle takes priority, and esc closes it before it quits.
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && k == KeyQuitEsc {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, m.quit()

	case key.Matches(msg, m.keys.Refresh):
		if m.phase == PhaseRefreshing {
			return true, nil
		}
		return true, m.startRefresh()

	case key.Matches(msg, m.keys.Padding):
		m.state.Padding = !m.state.Padding
		return true, nil

	case key.Matches(msg, m.keys.Taller):
		m.state.AdjustHeight(1, m.baseHeight(), m.height)
		return true, nil

	case key.Matches(msg, m.keys.Shorter):
		m.state.AdjustHeight(-1, m.baseHeight(), m.height)
		return true, nil

	case key.Matches(msg, m.keys.ResetHeight):
		m.state.ResetHeight()
		return true, nil

	case key.Matches(msg, m.keys.Expand):
		ids := m.state.Layout.Panels()
		if i := PanelIndex(k); i >= 0 && i < len(ids) {
			m.state.ToggleExpand(ids[i])
		}
		return true, nil
	}

	return false, nil
}

// HandleMouseMsg toggles expansion of the panel under a left click.
func (m *Model) HandleMouseMsg(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	id := HitTest(Geometry(m.state, m.width, m.bodyHeight()), msg.X, msg.Y)
	if id == "" {
		return false
	}
	return m.state.ToggleExpand(id)
}
