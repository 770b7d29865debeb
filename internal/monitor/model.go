package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/rileyhilliard/gridctl/internal/panels"
)

// Phase is where the refresh/input loop is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRefreshing
	PhaseRendered
	PhaseExiting
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRefreshing:
		return "refreshing"
	case PhaseRendered:
		return "rendered"
	case PhaseExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// footerHeight is the number of lines below the panels.
const footerHeight = 1

// Options configures a dashboard Model.
type Options struct {
	Layout          *layout.Layout
	Deps            panels.Deps
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	Concurrency     int
	IgnoreErrors    bool
	Padding         bool
	MaxHeight       int
	Logger          logger.Logger
	Metrics         *metrics.Metrics
}

// Model is the Bubble Tea model for the panel dashboard.
type Model struct {
	layout    *layout.Layout
	state     *DashboardState
	refresher *Refresher
	interval  time.Duration
	log       logger.Logger

	// ctx is cancelled on quit, aborting in-flight fetches.
	ctx    context.Context
	cancel context.CancelFunc

	phase   Phase
	cycle   int
	tickGen int

	width, height int
	lastUpdate    time.Time
	showHelp      bool
	keys          keyMap
	help          help.Model
}

// tickMsg asks for a refresh. Only the tick matching the model's current
// generation is honored, so a forced refresh never doubles the timer.
type tickMsg struct {
	gen int
}

// refreshMsg carries every panel result of one cycle.
type refreshMsg struct {
	cycle   int
	results []Result
	at      time.Time
}

// NewModel creates a dashboard for opts.Layout.
func NewModel(opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	st := NewState(opts.Layout.Expr)
	st.Padding = opts.Padding
	st.MaxHeight = opts.MaxHeight
	st.IgnoreErrors = opts.IgnoreErrors

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		layout:    opts.Layout,
		state:     st,
		refresher: NewRefresher(opts.Deps, opts.FetchTimeout, opts.Concurrency, log, opts.Metrics),
		interval:  opts.RefreshInterval,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		phase:     PhaseIdle,
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

// Init fires the first refresh right away.
func (m Model) Init() tea.Cmd {
	gen := m.tickGen
	return func() tea.Msg { return tickMsg{gen: gen} }
}

// Update handles one event at a time; state is never touched elsewhere.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.MouseMsg:
		m.HandleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.state.MaxHeight > m.height && m.height >= MinHeight {
			m.state.MaxHeight = m.height
		}

	case tickMsg:
		if msg.gen != m.tickGen || m.phase == PhaseRefreshing || m.phase == PhaseExiting {
			return m, nil
		}
		cmd := m.startRefresh()
		return m, cmd

	case refreshMsg:
		if msg.cycle != m.cycle || m.phase == PhaseExiting {
			return m, nil
		}
		m.apply(msg)
		cmd := m.tickCmd()
		m.phase = PhaseIdle
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.phase == PhaseExiting {
		return ""
	}
	return m.renderFrame()
}

// startRefresh moves to Refreshing and fetches every panel in the layout.
func (m *Model) startRefresh() tea.Cmd {
	m.phase = PhaseRefreshing
	m.cycle++
	m.tickGen++

	ctx := m.ctx
	cycle := m.cycle
	refresher := m.refresher
	ps := m.visiblePanels()
	return func() tea.Msg {
		results := refresher.Refresh(ctx, cycle, ps)
		return refreshMsg{cycle: cycle, results: results, at: time.Now()}
	}
}

// apply records a completed cycle. Results of a cycle land together.
func (m *Model) apply(msg refreshMsg) {
	for _, r := range msg.results {
		m.state.Apply(r.ID, r.Content, r.Err, msg.at)
	}
	m.lastUpdate = msg.at
	m.phase = PhaseRendered
}

// tickCmd schedules the next refresh after the interval.
func (m *Model) tickCmd() tea.Cmd {
	m.tickGen++
	gen := m.tickGen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// quit cancels in-flight fetches and ends the program.
func (m *Model) quit() tea.Cmd {
	m.phase = PhaseExiting
	m.cancel()
	return tea.Quit
}

// visiblePanels lists the panels to fetch, each once. While a panel is
// expanded only that panel is on screen.
func (m Model) visiblePanels() []panels.Panel {
	ids := m.state.Layout.Panels()
	if id := m.state.Expanded(); id != "" {
		ids = []string{id}
	}
	out := make([]panels.Panel, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.layout.Panels[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// bodyHeight is the height left for panels.
func (m Model) bodyHeight() int {
	h := m.height - footerHeight
	if h < 0 {
		return 0
	}
	return h
}

// baseHeight is the content height of the first window, the starting point
// for the height override.
func (m Model) baseHeight() int {
	ws := Geometry(m.state, m.width, m.bodyHeight())
	if len(ws) == 0 {
		return MinHeight
	}
	return ws[0].H - 2
}

// Phase returns the loop phase.
func (m Model) Phase() Phase {
	return m.phase
}

// Cycle returns the number of refresh cycles started.
func (m Model) Cycle() int {
	return m.cycle
}

// State returns the dashboard state.
func (m Model) State() *DashboardState {
	return m.state
}

// Context is cancelled when the dashboard quits.
func (m Model) Context() context.Context {
	return m.ctx
}
