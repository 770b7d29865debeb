package health

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/gridctl/internal/endpoint"
)

// Facet is one health dimension exposed per endpoint.
type Facet int

const (
	FacetStarted Facet = iota
	FacetLive
	FacetReady
	FacetSafe
)

// AllFacets lists every facet in display order.
var AllFacets = []Facet{FacetStarted, FacetLive, FacetReady, FacetSafe}

var facetNames = [...]string{"started", "live", "ready", "safe"}

// String returns the lower-case facet name.
func (f Facet) String() string {
	if f < 0 || int(f) >= len(facetNames) {
		return fmt.Sprintf("facet(%d)", int(f))
	}
	return facetNames[f]
}

// Path returns the HTTP path for the facet relative to the endpoint base URL.
func (f Facet) Path() string {
	return "/" + f.String()
}

// MarshalText lets Facet be used as a JSON/YAML map key.
func (f Facet) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a facet name.
func (f *Facet) UnmarshalText(b []byte) error {
	p, err := ParseFacet(string(b))
	if err != nil {
		return err
	}
	*f = p
	return nil
}

// ParseFacet parses a facet name, case-insensitively.
func ParseFacet(s string) (Facet, error) {
	for i, n := range facetNames {
		if strings.EqualFold(s, n) {
			return Facet(i), nil
		}
	}
	return 0, fmt.Errorf("unknown health facet %q", s)
}

// StatusRefused marks a facet whose connection failed; it never collides with an HTTP status.
const StatusRefused = -1

// StatusText renders a facet status for tables: the HTTP code, or "Refused".
func StatusText(status int) string {
	if status == StatusRefused {
		return "Refused"
	}
	return strconv.Itoa(status)
}

// FacetResult is one facet check against one endpoint.
type FacetResult struct {
	Facet   Facet         `json:"facet" yaml:"facet"`
	Status  int           `json:"status" yaml:"status"`
	Latency time.Duration `json:"latency" yaml:"latency"`
}

// OK reports whether the facet answered 200.
func (r FacetResult) OK() bool {
	return r.Status == 200
}

// Refused reports whether the connection itself failed.
func (r FacetResult) Refused() bool {
	return r.Status == StatusRefused
}

// Overall summarizes an endpoint's facets.
type Overall int

const (
	OverallOK Overall = iota
	OverallDegraded
	OverallUnreachable
)

// String returns the status name.
func (o Overall) String() string {
	switch o {
	case OverallOK:
		return "OK"
	case OverallDegraded:
		return "Degraded"
	case OverallUnreachable:
		return "Unreachable"
	default:
		return fmt.Sprintf("Overall(%d)", int(o))
	}
}

// MarshalText renders the status name in JSON/YAML.
func (o Overall) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// EndpointHealth is the facet map and summary for one endpoint.
type EndpointHealth struct {
	Endpoint endpoint.Endpoint     `json:"endpoint" yaml:"endpoint"`
	Facets   map[Facet]FacetResult `json:"facets" yaml:"facets"`
	Overall  Overall               `json:"overall" yaml:"overall"`
}

// Status returns the HTTP status for facet f, or StatusRefused when it was not checked.
func (h EndpointHealth) Status(f Facet) int {
	if r, ok := h.Facets[f]; ok {
		return r.Status
	}
	return StatusRefused
}

// Safe reports whether the safe facet answered 200.
func (h EndpointHealth) Safe() bool {
	return h.Status(FacetSafe) == 200
}

// classify derives Overall from the facet map.
// Unreachable only when every facet is refused.
func classify(facets map[Facet]FacetResult) Overall {
	if len(facets) == 0 {
		return OverallUnreachable
	}
	refused := 0
	degraded := false
	for _, r := range facets {
		switch {
		case r.Refused():
			refused++
		case !r.OK():
			degraded = true
		}
	}
	switch {
	case refused == len(facets):
		return OverallUnreachable
	case degraded:
		return OverallDegraded
	default:
		return OverallOK
	}
}

// Snapshot is the aggregated health of all endpoints for one poll cycle.
// It is built once and never mutated afterwards.
type Snapshot struct {
	ID        string           `json:"id" yaml:"id"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Endpoints []EndpointHealth `json:"endpoints" yaml:"endpoints"`
	AllSafe   bool             `json:"allSafe" yaml:"allSafe"`
	Warnings  []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SafeCount returns how many endpoints reported safe.
func (s Snapshot) SafeCount() int {
	n := 0
	for _, e := range s.Endpoints {
		if e.Safe() {
			n++
		}
	}
	return n
}

// SafeRatio is the share of safe endpoints. No endpoints counts as all safe.
func (s Snapshot) SafeRatio() float64 {
	if len(s.Endpoints) == 0 {
		return 1
	}
	return float64(s.SafeCount()) / float64(len(s.Endpoints))
}

// Counts returns the number of endpoints per Overall status name.
func (s Snapshot) Counts() map[string]int {
	out := make(map[string]int)
	for _, e := range s.Endpoints {
		out[e.Overall.String()]++
	}
	return out
}
