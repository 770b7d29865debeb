// Package endpoint turns the user's view of where health endpoints live
// (an explicit list or a name-service host:port) into concrete base URLs.
package endpoint

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gridctl/internal/errors"
)

// Endpoint identifies a reachable health/management base address.
// It is immutable once resolved for a polling cycle.
type Endpoint struct {
	// URL is the base URL; facet paths are appended to it.
	URL string `json:"url" yaml:"url"`
	// NodeID is the cluster member id when membership was correlated, 0 when unknown.
	NodeID int `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`
}

// String returns the endpoint URL.
func (e Endpoint) String() string {
	return e.URL
}

// Resolver produces the endpoint set for one polling cycle.
type Resolver interface {
	Resolve(ctx context.Context) ([]Endpoint, error)
}

// Static resolves to a fixed list.
type Static struct {
	endpoints []Endpoint
}

// NewStatic normalizes addrs (host:port or URLs) into a Static resolver.
// Blank and duplicate entries are dropped; order is kept.
func NewStatic(addrs ...string) (*Static, error) {
	seen := make(map[string]bool)
	var out []Endpoint
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		u, err := Normalize(a)
		if err != nil {
			return nil, err
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, Endpoint{URL: u})
	}
	return &Static{endpoints: out}, nil
}

// Resolve returns a copy of the static endpoint list.
func (s *Static) Resolve(context.Context) ([]Endpoint, error) {
	return append([]Endpoint(nil), s.endpoints...), nil
}

// ParseList splits a comma-separated endpoint list, trimming blanks.
func ParseList(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize converts host:port or a URL into a scheme-qualified base URL
// without a trailing slash.
func Normalize(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		return "", errors.New(errors.ErrEndpoint,
			fmt.Sprintf("Invalid endpoint '%s'", addr),
			"Use host:port or http://host:port")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New(errors.ErrEndpoint,
			fmt.Sprintf("Unsupported scheme '%s' in endpoint '%s'", u.Scheme, addr),
			"Use http or https")
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// LookupFunc resolves a host name to addresses. net.Resolver.LookupHost fits.
type LookupFunc func(ctx context.Context, host string) ([]string, error)

// NameService resolves a host:port to one endpoint per address record of host.
type NameService struct {
	host   string
	port   int
	scheme string
	lookup LookupFunc
}

// NewNameService parses hostPort and returns a resolver backed by lookup
// (net.DefaultResolver.LookupHost when nil).
func NewNameService(hostPort string, lookup LookupFunc) (*NameService, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(hostPort))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrEndpoint,
			fmt.Sprintf("Invalid name service address '%s'", hostPort),
			"Use host:port, e.g. localhost:7574")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, errors.New(errors.ErrEndpoint,
			fmt.Sprintf("Invalid port in name service address '%s'", hostPort),
			"Use a port between 1 and 65535")
	}
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}
	return &NameService{host: host, port: port, scheme: "http", lookup: lookup}, nil
}

// Resolve looks the host up and returns one endpoint per address, sorted.
func (n *NameService) Resolve(ctx context.Context) ([]Endpoint, error) {
	addrs, err := n.lookup(ctx, n.host)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrEndpoint,
			fmt.Sprintf("Name service lookup of '%s' failed", n.host),
			"Check the -n host:port value and DNS")
	}

	seen := make(map[string]bool)
	out := make([]Endpoint, 0, len(addrs))
	for _, a := range addrs {
		u := fmt.Sprintf("%s://%s", n.scheme, net.JoinHostPort(a, strconv.Itoa(n.port)))
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, Endpoint{URL: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

// Options selects a resolver. Endpoints wins over NSLookup.
type Options struct {
	Endpoints []string
	NSLookup  string
	Lookup    LookupFunc
}

// NewResolver builds the resolver described by opts.
func NewResolver(opts Options) (Resolver, error) {
	switch {
	case len(opts.Endpoints) > 0:
		return NewStatic(opts.Endpoints...)
	case opts.NSLookup != "":
		return NewNameService(opts.NSLookup, opts.Lookup)
	default:
		return nil, errors.New(errors.ErrEndpoint,
			"No health endpoints specified",
			"Use -e host:port[,host:port] or -n nameservice-host:port, or set endpoints for the cluster in config")
	}
}
