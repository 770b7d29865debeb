// Package metrics holds the prometheus collectors for health polling,
// dashboard panel fetches and management API requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a set of collectors bound to one registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HealthPolls        prometheus.Counter
	FacetChecks        *prometheus.CounterVec
	FacetLatency       *prometheus.HistogramVec
	AllSafe            prometheus.Gauge
	EndpointsByOverall *prometheus.GaugeVec
	PanelFetches       *prometheus.CounterVec
	MgmtRequests       *prometheus.CounterVec
}

// New registers the collectors on reg, or on a fresh registry when reg is nil.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HealthPolls: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gridctl",
			Subsystem: "health",
			Name:      "polls_total",
			Help:      "Total number of completed health poll cycles.",
		}),
		FacetChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridctl",
			Subsystem: "health",
			Name:      "facet_checks_total",
			Help:      "Health facet checks by facet and result (ok, not_ok, refused).",
		}, []string{"facet", "result"}),
		FacetLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gridctl",
			Subsystem: "health",
			Name:      "facet_latency_seconds",
			Help:      "Latency of health facet requests.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"facet"}),
		AllSafe: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "gridctl",
			Subsystem: "health",
			Name:      "all_safe",
			Help:      "1 if the latest snapshot reported every endpoint safe, else 0.",
		}),
		EndpointsByOverall: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gridctl",
			Subsystem: "health",
			Name:      "endpoints",
			Help:      "Endpoints in the latest snapshot by overall status.",
		}, []string{"overall"}),
		PanelFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridctl",
			Subsystem: "panel",
			Name:      "fetches_total",
			Help:      "Dashboard panel fetches by panel and result (ok, error).",
		}, []string{"panel", "result"}),
		MgmtRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridctl",
			Subsystem: "mgmt",
			Name:      "requests_total",
			Help:      "Management API requests by result (ok, error, rejected).",
		}, []string{"result"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFacet records one facet check.
func (m *Metrics) ObserveFacet(facet, result string, latency time.Duration) {
	if m == nil {
		return
	}
	m.FacetChecks.WithLabelValues(facet, result).Inc()
	m.FacetLatency.WithLabelValues(facet).Observe(latency.Seconds())
}

// ObserveSnapshot records a completed poll cycle. counts maps overall status to endpoints.
func (m *Metrics) ObserveSnapshot(allSafe bool, counts map[string]int) {
	if m == nil {
		return
	}
	m.HealthPolls.Inc()
	if allSafe {
		m.AllSafe.Set(1)
	} else {
		m.AllSafe.Set(0)
	}
	m.EndpointsByOverall.Reset()
	for overall, n := range counts {
		m.EndpointsByOverall.WithLabelValues(overall).Set(float64(n))
	}
}

// ObservePanelFetch records one panel fetch.
func (m *Metrics) ObservePanelFetch(panel string, err error) {
	if m == nil {
		return
	}
	m.PanelFetches.WithLabelValues(panel, result(err)).Inc()
}

// ObserveMgmtRequest records one management API request.
func (m *Metrics) ObserveMgmtRequest(outcome string) {
	if m == nil {
		return
	}
	m.MgmtRequests.WithLabelValues(outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
