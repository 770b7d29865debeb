package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/monitor"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/rileyhilliard/gridctl/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// monitor cluster flags
var (
	dashLayout       string
	dashCache        string
	dashService      string
	dashTopic        string
	dashSubscriber   string
	dashIgnoreErrors bool
	dashShowPanels   bool
	dashOutput       string
	dashRefresh      int
	dashFetchTimeout int
	dashPickLayout   bool
	dashURL          string
	dashEndpoints    EndpointFlags
)

var monitorClusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Live multi-panel cluster dashboard",
	Long: `Show a refreshing dashboard of cluster panels laid out by a layout expression
or preset name.

A layout expression lists panel ids: ',' separates panels on one row and ':'
starts a new row, e.g. "members,services:caches". Some panels need a cache,
service, topic or subscriber name. Run with --show-panels to list them.

Keys: 1-9/a-z expand a panel, click a panel to expand it, p toggles padding,
+/-/0 change the panel height, r refreshes, ? shows help, q quits.

Examples:
  gridctl monitor cluster
  gridctl monitor cluster -l default-cache -C orders
  gridctl monitor cluster -l "members,caches:health-summary" -e host1:6676
  gridctl monitor cluster --show-panels`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dashShowPanels {
			if err := ValidateFormat(dashOutput); err != nil {
				return err
			}
			machineMode = dashOutput == health.FormatJSON
		}

		s, err := openSession(!dashShowPanels)
		if err != nil {
			return err
		}
		defer s.Close()

		refresh, err := ParseSeconds("refresh", dashRefresh)
		if err != nil {
			return err
		}
		fetchTimeout, err := ParseSeconds("fetch-timeout", dashFetchTimeout)
		if err != nil {
			return err
		}
		return runMonitorCluster(s, cmd.OutOrStdout(), dashboardOpts{
			layout: dashLayout,
			params: panels.Params{
				panels.ParamCache:      dashCache,
				panels.ParamService:    dashService,
				panels.ParamTopic:      dashTopic,
				panels.ParamSubscriber: dashSubscriber,
			},
			ignoreErrors: dashIgnoreErrors,
			showPanels:   dashShowPanels,
			format:       dashOutput,
			refresh:      refresh,
			fetchTimeout: fetchTimeout,
			pickLayout:   dashPickLayout,
			url:          dashURL,
			endpoints:    dashEndpoints,
		})
	},
}

func init() {
	f := monitorClusterCmd.Flags()
	f.StringVarP(&dashLayout, "layout", "l", "", "preset name or layout expression (default from config)")
	f.StringVarP(&dashCache, "cache-name", "C", "", "cache for cache panels")
	f.StringVarP(&dashService, "service", "S", "", "service for service and topic panels")
	f.StringVar(&dashTopic, "topic", "", "topic for topic panels")
	f.StringVar(&dashSubscriber, "subscriber", "", "subscriber group for subscriber panels")
	f.BoolVarP(&dashIgnoreErrors, "ignore-errors", "I", false, "keep showing the last good content when a panel fails")
	f.BoolVar(&dashShowPanels, "show-panels", false, "list panels and layout presets, then exit")
	f.StringVarP(&dashOutput, "output", "o", health.FormatTable, "--show-panels output format: table, json, yaml")
	f.IntVarP(&dashRefresh, "refresh", "d", 0, "seconds between refreshes (default from config)")
	f.IntVar(&dashFetchTimeout, "fetch-timeout", 0, "seconds before a panel fetch fails (default from config)")
	f.BoolVar(&dashPickLayout, "pick-layout", false, "choose a layout preset interactively")
	f.StringVar(&dashURL, "url", "", "management REST base URL (default from the cluster in config)")
	AddEndpointFlags(monitorClusterCmd, &dashEndpoints)

	monitorCmd.AddCommand(monitorClusterCmd)
}

type dashboardOpts struct {
	layout       string
	params       panels.Params
	ignoreErrors bool
	showPanels   bool
	format       string
	refresh      time.Duration
	fetchTimeout time.Duration
	pickLayout   bool
	url          string
	endpoints    EndpointFlags
}

// runMonitorCluster resolves the layout and runs the dashboard. Layout and
// parameter errors are reported before the terminal is taken over.
func runMonitorCluster(s *session, out io.Writer, opts dashboardOpts) error {
	resolver, err := layout.NewResolver(panels.NewBuiltinRegistry(), s.cfg.Dashboard.Layouts)
	if err != nil {
		return err
	}

	if opts.showPanels {
		return writeCatalogue(out, panels.NewBuiltinRegistry(), resolver, opts.format)
	}

	name := opts.layout
	if name == "" {
		name = s.cfg.Dashboard.Layout
	}
	if opts.pickLayout {
		name, err = pickLayout(resolver, name)
		if err != nil {
			return err
		}
	}

	l, err := resolver.Resolve(name, opts.params)
	if err != nil {
		return err
	}

	if !ui.IsTerminal(os.Stdout) || !ui.IsTerminal(os.Stdin) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'gridctl get health' for plain output, or run in a terminal")
	}

	deps, err := dashboardDeps(s, opts)
	if err != nil {
		return err
	}

	cfg := s.cfg.Dashboard
	if opts.refresh <= 0 {
		opts.refresh = cfg.RefreshInterval
	}
	if opts.fetchTimeout <= 0 {
		opts.fetchTimeout = cfg.FetchTimeout
	}
	model := monitor.NewModel(monitor.Options{
		Layout:          l,
		Deps:            deps,
		RefreshInterval: opts.refresh,
		FetchTimeout:    opts.fetchTimeout,
		IgnoreErrors:    opts.ignoreErrors,
		Padding:         cfg.Padding,
		MaxHeight:       cfg.MaxHeight,
		Logger:          logger.Named(s.log, "dashboard"),
		Metrics:         s.metrics,
	})

	s.log.Info("dashboard: layout %s (%s)", l.Name, l.Expr)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "Dashboard stopped unexpectedly")
	}
	return nil
}

// dashboardDeps wires only the collaborators that are configured. Panels
// needing a missing one show an inline error instead.
func dashboardDeps(s *session, opts dashboardOpts) (panels.Deps, error) {
	var deps panels.Deps

	client, err := s.mgmtClient(opts.url)
	if err != nil {
		return deps, err
	}
	if client != nil {
		deps.Mgmt = client
	}

	if s.hasEndpoints(opts.endpoints) {
		checker, err := s.checker(opts.endpoints, 0)
		if err != nil {
			return deps, err
		}
		deps.Health = checker
	}
	return deps, nil
}

// pickLayout asks for a preset. current is preselected when it names one.
func pickLayout(r *layout.Resolver, current string) (string, error) {
	if !ui.IsTerminal(os.Stdin) {
		return "", errors.New(errors.ErrConfig,
			"--pick-layout needs an interactive terminal",
			"Pass the layout with -l instead")
	}

	presets := r.Presets()
	options := make([]huh.Option[string], len(presets))
	for i, p := range presets {
		label := p.Name
		if len(p.Requires) > 0 {
			label += " (needs " + dashIfEmpty(paramNames(p.Requires)) + ")"
		}
		options[i] = huh.NewOption(label, p.Name)
	}

	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose a layout").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrLayout,
			"Layout selection cancelled",
			"Pass the layout with -l instead")
	}
	return selected, nil
}

// catalogue is the --show-panels listing.
type catalogue struct {
	Panels  []panelInfo  `json:"panels" yaml:"panels"`
	Presets []presetInfo `json:"presets" yaml:"presets"`
}

type panelInfo struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

type presetInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Layout   string   `json:"layout" yaml:"layout"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	Source   string   `json:"source" yaml:"source"`
}

func buildCatalogue(reg *panels.Registry, r *layout.Resolver) catalogue {
	var c catalogue
	for _, spec := range reg.Specs() {
		c.Panels = append(c.Panels, panelInfo{ID: spec.ID, Title: spec.Title, Requires: paramNames(spec.Requires)})
	}
	for _, p := range r.Presets() {
		source := "builtin"
		if p.User {
			source = "config"
		}
		c.Presets = append(c.Presets, presetInfo{Name: p.Name, Layout: p.Expr, Requires: paramNames(p.Requires), Source: source})
	}
	return c
}

func paramNames(ps []panels.Param) []string {
	if len(ps) == 0 {
		return nil
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func writeCatalogue(w io.Writer, reg *panels.Registry, r *layout.Resolver, format string) error {
	c := buildCatalogue(reg, r)

	switch format {
	case health.FormatJSON:
		return WriteJSONSuccess(w, c)
	case health.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}

	specs := reg.Specs()
	rows := make([][]string, len(specs))
	for i, spec := range specs {
		rows[i] = []string{spec.ID, spec.Title, panels.RequiresText(spec)}
	}
	fmt.Fprintln(w, ui.RenderColumns([]string{"PANEL", "TITLE", "REQUIRES"}, rows))
	fmt.Fprintln(w)

	rows = make([][]string, len(c.Presets))
	for i, p := range c.Presets {
		rows[i] = []string{p.Name, p.Layout, dashIfEmpty(p.Requires), p.Source}
	}
	_, err := fmt.Fprintln(w, ui.RenderColumns([]string{"PRESET", "LAYOUT", "REQUIRES", "SOURCE"}, rows))
	return err
}

func dashIfEmpty(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ",")
}
