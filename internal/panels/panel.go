// Package panels holds the dashboard's panel catalogue: each panel pairs one
// logical read against the cluster with a renderer for what it read.
//
// The registry does not look inside Content; only renderers do.
package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/mgmt"
)

// Param names a contextual value a panel needs before it can fetch.
type Param string

const (
	ParamService    Param = "service"
	ParamCache      Param = "cache"
	ParamTopic      Param = "topic"
	ParamSubscriber Param = "subscriber"
)

// Flag returns the CLI flag that supplies p.
func (p Param) Flag() string {
	switch p {
	case ParamService:
		return "-S/--service"
	case ParamCache:
		return "-C/--cache-name"
	case ParamTopic:
		return "--topic"
	case ParamSubscriber:
		return "--subscriber"
	default:
		return "--" + string(p)
	}
}

// Params carries caller-supplied contextual values.
type Params map[Param]string

// Has reports whether p is set to a non-blank value.
func (ps Params) Has(p Param) bool {
	return strings.TrimSpace(ps[p]) != ""
}

// Missing returns the first required param not present in ps.
func (ps Params) Missing(required []Param) (Param, bool) {
	for _, p := range required {
		if !ps.Has(p) {
			return p, true
		}
	}
	return "", false
}

// Field is one named value.
type Field struct {
	Name  string
	Value string
}

// Content is what a panel fetched: tabular rows, named fields, or both.
type Content struct {
	Columns []string
	Rows    [][]string
	Fields  []Field
	Summary string
}

// Deps are the collaborators a fetch may read from.
type Deps struct {
	Mgmt   mgmt.Fetcher
	Health health.Snapshotter
}

// FetchFunc performs exactly one logical read.
type FetchFunc func(ctx context.Context, deps Deps, params Params) (Content, error)

// RenderFunc turns content into lines for a window of the given size.
// It returns every line it has; the dashboard clips and marks trimming.
type RenderFunc func(c Content, width, height int) []string

// Spec describes one panel kind.
type Spec struct {
	ID       string
	Title    string
	Requires []Param
	Fetch    FetchFunc
	Render   RenderFunc
}

// Panel is a Spec bound to the parameters it needs.
type Panel struct {
	Spec   Spec
	Params Params
}

// ID returns the panel id.
func (p Panel) ID() string {
	return p.Spec.ID
}

// Title returns the display title, qualified by its parameters.
func (p Panel) Title() string {
	if len(p.Spec.Requires) == 0 {
		return p.Spec.Title
	}
	vals := make([]string, 0, len(p.Spec.Requires))
	for _, r := range p.Spec.Requires {
		vals = append(vals, p.Params[r])
	}
	return fmt.Sprintf("%s (%s)", p.Spec.Title, strings.Join(vals, "/"))
}

// Fetch performs the panel's read, wrapping failures in FetchError.
func (p Panel) Fetch(ctx context.Context, deps Deps) (Content, error) {
	c, err := p.Spec.Fetch(ctx, deps, p.Params)
	if err != nil {
		return Content{}, &FetchError{Panel: p.Spec.ID, Err: err}
	}
	return c, nil
}

// Render draws content for the panel.
func (p Panel) Render(c Content, width, height int) []string {
	if p.Spec.Render == nil {
		return RenderDefault(c, width, height)
	}
	return p.Spec.Render(c, width, height)
}

// RequiresText lists the flags a spec needs, or "-" when none.
func RequiresText(s Spec) string {
	if len(s.Requires) == 0 {
		return "-"
	}
	flags := make([]string, len(s.Requires))
	for i, r := range s.Requires {
		flags[i] = string(r)
	}
	return strings.Join(flags, ",")
}
