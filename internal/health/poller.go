package health

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rileyhilliard/gridctl/internal/endpoint"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRequestTimeout bounds each facet request.
	DefaultRequestTimeout = 5 * time.Second
	// DefaultConcurrency caps in-flight facet requests per poll.
	DefaultConcurrency = 16
)

// Poller issues one GET per (endpoint, facet) pair with a per-request timeout.
// It never retries; callers poll again.
type Poller struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	log         logger.Logger
	metrics     *metrics.Metrics
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithHTTPClient sets the client used for facet requests.
func WithHTTPClient(c *http.Client) PollerOption {
	return func(p *Poller) { p.client = c }
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithConcurrency caps concurrent requests.
func WithConcurrency(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics records facet checks on m.
func WithMetrics(m *metrics.Metrics) PollerOption {
	return func(p *Poller) { p.metrics = m }
}

// NewPoller creates a poller with defaults overridden by opts.
func NewPoller(opts ...PollerOption) *Poller {
	p := &Poller{
		client:      &http.Client{},
		timeout:     DefaultRequestTimeout,
		concurrency: DefaultConcurrency,
		log:         logger.Noop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Poll checks every facet of every endpoint concurrently and joins before returning.
// Results keep the order of endpoints. An endpoint with any failed connection
// reports Refused for all of its facets.
func (p *Poller) Poll(ctx context.Context, endpoints []endpoint.Endpoint, facets []Facet) []EndpointHealth {
	if len(endpoints) == 0 {
		return nil
	}
	if len(facets) == 0 {
		facets = AllFacets
	}

	// One slot per task; no locking needed.
	slots := make([]FacetResult, len(endpoints)*len(facets))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, ep := range endpoints {
		for j, f := range facets {
			slot := &slots[i*len(facets)+j]
			g.Go(func() error {
				*slot = p.check(ctx, ep, f)
				return nil
			})
		}
	}
	_ = g.Wait()

	out := make([]EndpointHealth, len(endpoints))
	for i, ep := range endpoints {
		row := slots[i*len(facets) : (i+1)*len(facets)]
		out[i] = buildEndpointHealth(ep, row)
	}
	return out
}

// check performs one facet request.
func (p *Poller) check(ctx context.Context, ep endpoint.Endpoint, f Facet) FacetResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := FacetResult{Facet: f, Status: StatusRefused}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL+f.Path(), nil)
	if err != nil {
		p.log.Warn("health: bad request for %s%s: %v", ep.URL, f.Path(), err)
		return res
	}

	resp, err := p.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		p.log.Debug("health: %s%s refused: %v", ep.URL, f.Path(), err)
		p.metrics.ObserveFacet(f.String(), "refused", res.Latency)
		return res
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	res.Status = resp.StatusCode
	outcome := "ok"
	if !res.OK() {
		outcome = "not_ok"
	}
	p.log.Debug("health: %s%s -> %d in %s", ep.URL, f.Path(), res.Status, res.Latency)
	p.metrics.ObserveFacet(f.String(), outcome, res.Latency)
	return res
}

// buildEndpointHealth turns one endpoint's facet results into an EndpointHealth.
// A partially refused endpoint is treated as not responding.
func buildEndpointHealth(ep endpoint.Endpoint, results []FacetResult) EndpointHealth {
	anyRefused := false
	for _, r := range results {
		if r.Refused() {
			anyRefused = true
			break
		}
	}

	facets := make(map[Facet]FacetResult, len(results))
	for _, r := range results {
		if anyRefused {
			r.Status = StatusRefused
		}
		facets[r.Facet] = r
	}
	return EndpointHealth{Endpoint: ep, Facets: facets, Overall: classify(facets)}
}

// unreachable builds an all-refused entry, used when resolution fails.
func unreachable(ep endpoint.Endpoint, facets []Facet) EndpointHealth {
	results := make([]FacetResult, len(facets))
	for i, f := range facets {
		results[i] = FacetResult{Facet: f, Status: StatusRefused}
	}
	return buildEndpointHealth(ep, results)
}
