package health

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/gridctl/internal/endpoint"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/rileyhilliard/gridctl/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// WarningNoEndpoints is recorded when a snapshot had nothing to check.
const WarningNoEndpoints = "no health endpoints to check; reporting all safe"

// Aggregate builds a snapshot from one poll's results. It is pure: the same
// inputs always produce the same snapshot. AllSafe is recomputed from the
// safe facet of every endpoint and is vacuously true for an empty list.
func Aggregate(results []EndpointHealth, at time.Time, id string) Snapshot {
	snap := Snapshot{
		ID:        id,
		Timestamp: at,
		Endpoints: results,
		AllSafe:   true,
	}
	if len(results) == 0 {
		snap.Warnings = []string{WarningNoEndpoints}
		return snap
	}
	for _, r := range results {
		if !r.Safe() {
			snap.AllSafe = false
			break
		}
	}
	return snap
}

// Snapshotter produces one fresh snapshot per call.
type Snapshotter interface {
	Snapshot(ctx context.Context) Snapshot
}

// Checker resolves endpoints, polls them and aggregates the result.
type Checker struct {
	resolver endpoint.Resolver
	poller   *Poller
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string

	mu   sync.Mutex
	last []endpoint.Endpoint
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCheckerLogger sets the logger that receives snapshot warnings.
func WithCheckerLogger(l logger.Logger) CheckerOption {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCheckerMetrics records snapshot outcomes on m.
func WithCheckerMetrics(m *metrics.Metrics) CheckerOption {
	return func(c *Checker) { c.metrics = m }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a Checker. A nil poller gets defaults.
func NewChecker(resolver endpoint.Resolver, poller *Poller, opts ...CheckerOption) *Checker {
	if poller == nil {
		poller = NewPoller()
	}
	c := &Checker{
		resolver: resolver,
		poller:   poller,
		log:      logger.Noop(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot runs one poll cycle. A resolver failure marks the last known
// endpoints unreachable and forces AllSafe to false for this cycle.
func (c *Checker) Snapshot(ctx context.Context) Snapshot {
	ctx, end := tracing.StartSpan(ctx, "health.poll")
	defer end()

	id := c.newID()
	endpoints, err := c.resolver.Resolve(ctx)
	if err != nil {
		c.mu.Lock()
		known := append([]endpoint.Endpoint(nil), c.last...)
		c.mu.Unlock()

		results := make([]EndpointHealth, len(known))
		for i, ep := range known {
			results[i] = unreachable(ep, AllFacets)
		}
		snap := Aggregate(results, c.now(), id)
		snap.AllSafe = false
		snap.Warnings = []string{"endpoint resolution failed: " + err.Error()}
		c.log.Warn("health: %v", err)
		c.record(ctx, snap)
		return snap
	}

	c.mu.Lock()
	c.last = append([]endpoint.Endpoint(nil), endpoints...)
	c.mu.Unlock()

	snap := Aggregate(c.poller.Poll(ctx, endpoints, AllFacets), c.now(), id)
	for _, w := range snap.Warnings {
		c.log.Warn("health: %s", w)
	}
	c.record(ctx, snap)
	return snap
}

func (c *Checker) record(ctx context.Context, snap Snapshot) {
	c.metrics.ObserveSnapshot(snap.AllSafe, snap.Counts())
	tracing.Annotate(ctx,
		attribute.String("snapshot.id", snap.ID),
		attribute.Int("endpoints", len(snap.Endpoints)),
		attribute.Int("safe", snap.SafeCount()),
		attribute.Bool("all_safe", snap.AllSafe),
	)
	c.log.Debug("health: snapshot %s %d/%d safe", snap.ID, snap.SafeCount(), len(snap.Endpoints))
}
