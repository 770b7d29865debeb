package panels

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the catalogue of panel specs keyed by id.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds spec. Registering an id that is already present is a no-op,
// so catalogue builds can run more than once.
func (r *Registry) Register(spec Spec) error {
	if spec.ID == "" {
		return fmt.Errorf("panel spec has no id")
	}
	if spec.Fetch == nil {
		return fmt.Errorf("panel %q has no fetch", spec.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specs[spec.ID]; ok {
		return nil
	}
	r.specs[spec.ID] = spec
	return nil
}

// MustRegister registers specs and panics on an invalid one.
func (r *Registry) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the spec for id, or a NotFoundError.
func (r *Registry) Lookup(id string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[id]
	if !ok {
		return Spec{}, &NotFoundError{ID: id}
	}
	return s, nil
}

// Bind looks id up and checks params covers everything it requires.
func (r *Registry) Bind(id string, params Params) (Panel, error) {
	spec, err := r.Lookup(id)
	if err != nil {
		return Panel{}, err
	}
	if p, missing := params.Missing(spec.Requires); missing {
		return Panel{}, &MissingParameterError{Panel: id, Param: p}
	}

	bound := make(Params, len(spec.Requires))
	for _, p := range spec.Requires {
		bound[p] = params[p]
	}
	return Panel{Spec: spec, Params: bound}, nil
}

// Known returns the set of registered ids.
func (r *Registry) Known() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.specs))
	for id := range r.specs {
		out[id] = true
	}
	return out
}

// Specs returns every registered spec sorted by id.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
