package layout

import (
	"fmt"
	"sort"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/panels"
)

// Preset is a named layout.
type Preset struct {
	Name     string
	Expr     string
	Requires []panels.Param
	// User is true for presets defined in config.
	User bool
}

// Builtin presets.
var Builtin = []Preset{
	{Name: "default", Expr: "cluster-overview:members,machines:services,caches"},
	{Name: "default-service", Expr: "services:service-members:service-partitions",
		Requires: []panels.Param{panels.ParamService}},
	{Name: "default-cache", Expr: "caches:cache-access:cache-storage",
		Requires: []panels.Param{panels.ParamCache}},
	{Name: "default-topic", Expr: "topics:topic-members:subscribers",
		Requires: []panels.Param{panels.ParamService, panels.ParamTopic}},
	{Name: "default-subscriber", Expr: "subscribers:subscriber-channels",
		Requires: []panels.Param{panels.ParamService, panels.ParamTopic, panels.ParamSubscriber}},
	{Name: "default-health", Expr: "health-summary:members,network-stats"},
}

// Layout is a resolved expression with every panel bound to its parameters.
type Layout struct {
	Name   string
	Expr   Expr
	Panels map[string]panels.Panel
}

// Resolver turns preset names or literal expressions into layouts.
type Resolver struct {
	registry *panels.Registry
	presets  map[string]Preset
}

// NewResolver builds a resolver over reg with the built-in presets plus user
// presets (name -> expression). User presets may not shadow built-ins and must
// only reference registered panels.
func NewResolver(reg *panels.Registry, user map[string]string) (*Resolver, error) {
	r := &Resolver{registry: reg, presets: make(map[string]Preset)}
	for _, p := range Builtin {
		r.presets[p.Name] = p
	}

	known := reg.Known()
	names := make([]string, 0, len(user))
	for n := range user {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := r.presets[name]; ok {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Layout '%s' in config shadows a built-in preset", name),
				"Rename it under dashboard.layouts")
		}
		expr, err := Parse(user[name], known)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Layout '%s' in config is invalid", name),
				"Fix it under dashboard.layouts")
		}
		r.presets[name] = Preset{Name: name, Expr: user[name], Requires: requiredParams(reg, expr), User: true}
	}
	return r, nil
}

// Presets returns every preset sorted by name.
func (r *Resolver) Presets() []Preset {
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve resolves a preset name, falling back to literal parsing, then binds
// every panel. Missing parameters fail here, before the dashboard starts.
func (r *Resolver) Resolve(nameOrExpr string, params panels.Params) (*Layout, error) {
	name := nameOrExpr
	src := nameOrExpr
	if p, ok := r.presets[nameOrExpr]; ok {
		if missing, ok := params.Missing(p.Requires); ok {
			return nil, &panels.MissingParameterError{Panel: p.Name, Param: missing}
		}
		src = p.Expr
	}

	expr, err := Parse(src, r.registry.Known())
	if err != nil {
		return nil, err
	}

	bound := make(map[string]panels.Panel)
	for _, id := range expr.Panels() {
		p, err := r.registry.Bind(id, params)
		if err != nil {
			return nil, err
		}
		bound[id] = p
	}
	return &Layout{Name: name, Expr: expr, Panels: bound}, nil
}

func requiredParams(reg *panels.Registry, expr Expr) []panels.Param {
	seen := make(map[panels.Param]bool)
	var out []panels.Param
	for _, id := range expr.Panels() {
		spec, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		for _, p := range spec.Requires {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
