package monitor

import (
	"context"
	"time"

	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/rileyhilliard/gridctl/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Defaults for the dashboard's own refresh cycle.
const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultFetchTimeout    = 10 * time.Second
	DefaultConcurrency     = 8
)

// Result is one panel's fetch outcome for a cycle.
type Result struct {
	ID      string
	Content panels.Content
	Err     error
	Latency time.Duration
}

// Refresher fetches every visible panel concurrently and joins before
// returning, so a cycle is applied all at once.
type Refresher struct {
	deps        panels.Deps
	timeout     time.Duration
	concurrency int
	log         logger.Logger
	metrics     *metrics.Metrics
}

// NewRefresher creates a refresher. Zero values fall back to defaults.
func NewRefresher(deps panels.Deps, timeout time.Duration, concurrency int, log logger.Logger, m *metrics.Metrics) *Refresher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Refresher{deps: deps, timeout: timeout, concurrency: concurrency, log: log, metrics: m}
}

// Refresh fetches ps. Results keep the order of ps. A failed fetch is a
// Result with Err set; it never stops the others.
func (r *Refresher) Refresh(ctx context.Context, cycle int, ps []panels.Panel) []Result {
	ctx, end := tracing.StartSpan(ctx, "dashboard.refresh",
		attribute.Int("cycle", cycle),
		attribute.Int("panels", len(ps)))
	defer end()

	out := make([]Result, len(ps))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, p := range ps {
		slot := &out[i]
		g.Go(func() error {
			*slot = r.fetch(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range out {
		if res.Err != nil {
			failed++
		}
	}
	tracing.Annotate(ctx, attribute.Int("failed", failed))
	r.log.Debug("dashboard: cycle %d fetched %d panels, %d failed", cycle, len(ps), failed)
	return out
}

func (r *Refresher) fetch(ctx context.Context, p panels.Panel) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	c, err := p.Fetch(ctx, r.deps)
	res := Result{ID: p.ID(), Content: c, Err: err, Latency: time.Since(start)}
	if err != nil {
		r.log.Warn("dashboard: panel %s: %v", p.ID(), err)
	}
	r.metrics.ObservePanelFetch(p.ID(), err)
	return res
}
