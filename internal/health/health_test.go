package health

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rileyhilliard/gridctl/internal/endpoint"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// facetServer answers each facet path with the given status (200 when absent).
func facetServer(t *testing.T, statuses map[string]int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, ok := statuses[r.URL.Path]
		if !ok {
			code = http.StatusOK
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// refusedURL returns the URL of a server that is no longer listening.
func refusedURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestPoll_OKDegradedUnreachable(t *testing.T) {
	a := facetServer(t, nil)
	b := facetServer(t, map[string]int{"/safe": http.StatusServiceUnavailable})
	c := refusedURL(t)

	eps := []endpoint.Endpoint{{URL: a.URL}, {URL: b.URL}, {URL: c}}
	results := NewPoller(WithRequestTimeout(2*time.Second)).Poll(context.Background(), eps, AllFacets)
	require.Len(t, results, 3)

	assert.Equal(t, OverallOK, results[0].Overall)
	assert.Equal(t, OverallDegraded, results[1].Overall)
	assert.Equal(t, OverallUnreachable, results[2].Overall)

	assert.Equal(t, 200, results[1].Status(FacetReady))
	assert.Equal(t, 503, results[1].Status(FacetSafe))
	for _, f := range AllFacets {
		assert.Equal(t, StatusRefused, results[2].Status(f), "facet %s", f)
	}

	// order follows the endpoint list
	assert.Equal(t, a.URL, results[0].Endpoint.URL)
	assert.Equal(t, c, results[2].Endpoint.URL)

	snap := Aggregate(results, time.Unix(0, 0), "id")
	assert.False(t, snap.AllSafe)
	assert.Equal(t, 1, snap.SafeCount())
}

func TestPoll_AllOKIsAllSafe(t *testing.T) {
	a := facetServer(t, nil)
	b := facetServer(t, nil)

	results := NewPoller().Poll(context.Background(),
		[]endpoint.Endpoint{{URL: a.URL}, {URL: b.URL}}, AllFacets)
	snap := Aggregate(results, time.Now(), "id")
	assert.True(t, snap.AllSafe)
	assert.Empty(t, snap.Warnings)
}

func TestPoll_SlowEndpointDoesNotStallOthers(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)
	fast := facetServer(t, nil)

	start := time.Now()
	results := NewPoller(WithRequestTimeout(200*time.Millisecond)).Poll(context.Background(),
		[]endpoint.Endpoint{{URL: slow.URL}, {URL: fast.URL}}, AllFacets)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, OverallUnreachable, results[0].Overall)
	assert.Equal(t, OverallOK, results[1].Overall)
}

func TestPoll_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
	}))
	defer srv.Close()

	eps := make([]endpoint.Endpoint, 4)
	for i := range eps {
		eps[i] = endpoint.Endpoint{URL: srv.URL}
	}
	results := NewPoller(WithConcurrency(2)).Poll(context.Background(), eps, AllFacets)

	require.Len(t, results, 4)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoll_RecordsMetrics(t *testing.T) {
	m := metrics.New(nil)
	srv := facetServer(t, map[string]int{"/ready": 503})

	NewPoller(WithMetrics(m)).Poll(context.Background(), []endpoint.Endpoint{{URL: srv.URL}}, AllFacets)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FacetChecks.WithLabelValues("ready", "not_ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FacetChecks.WithLabelValues("safe", "ok")))
}

func TestBuildEndpointHealth_PartialRefusalIsUnreachable(t *testing.T) {
	h := buildEndpointHealth(endpoint.Endpoint{URL: "http://x"}, []FacetResult{
		{Facet: FacetStarted, Status: 200},
		{Facet: FacetLive, Status: StatusRefused},
		{Facet: FacetReady, Status: 503},
		{Facet: FacetSafe, Status: 200},
	})

	assert.Equal(t, OverallUnreachable, h.Overall)
	for _, f := range AllFacets {
		assert.True(t, h.Facets[f].Refused(), "facet %s", f)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		want     Overall
	}{
		{"all ok", []int{200, 200, 200, 200}, OverallOK},
		{"one 503", []int{200, 200, 200, 503}, OverallDegraded},
		{"all 503", []int{503, 503, 503, 503}, OverallDegraded},
		{"all refused", []int{-1, -1, -1, -1}, OverallUnreachable},
		{"empty", nil, OverallUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facets := make(map[Facet]FacetResult)
			for i, s := range tt.statuses {
				facets[Facet(i)] = FacetResult{Facet: Facet(i), Status: s}
			}
			assert.Equal(t, tt.want, classify(facets))
		})
	}
}

func TestAggregate_EmptyIsVacuouslySafeWithWarning(t *testing.T) {
	snap := Aggregate(nil, time.Unix(10, 0), "abc")
	assert.True(t, snap.AllSafe)
	assert.Equal(t, []string{WarningNoEndpoints}, snap.Warnings)
	assert.Equal(t, "abc", snap.ID)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	results := []EndpointHealth{
		buildEndpointHealth(endpoint.Endpoint{URL: "http://a"}, []FacetResult{{Facet: FacetSafe, Status: 200}}),
		buildEndpointHealth(endpoint.Endpoint{URL: "http://b"}, []FacetResult{{Facet: FacetSafe, Status: 503}}),
	}
	at := time.Unix(100, 0)
	assert.Equal(t, Aggregate(results, at, "x"), Aggregate(results, at, "x"))
}

type flakyResolver struct {
	calls atomic.Int32
	eps   []endpoint.Endpoint
}

func (r *flakyResolver) Resolve(context.Context) ([]endpoint.Endpoint, error) {
	if r.calls.Add(1) == 1 {
		return r.eps, nil
	}
	return nil, fmt.Errorf("lookup grid.local: no such host")
}

func TestChecker_ResolverFailureMarksKnownEndpointsUnreachable(t *testing.T) {
	srv := facetServer(t, nil)
	log := logger.NewBufferLogger()
	r := &flakyResolver{eps: []endpoint.Endpoint{{URL: srv.URL}}}
	c := NewChecker(r, nil, WithCheckerLogger(log))

	first := c.Snapshot(context.Background())
	assert.True(t, first.AllSafe)
	assert.NotEmpty(t, first.ID)

	second := c.Snapshot(context.Background())
	assert.False(t, second.AllSafe)
	require.Len(t, second.Endpoints, 1)
	assert.Equal(t, OverallUnreachable, second.Endpoints[0].Overall)
	require.Len(t, second.Warnings, 1)
	assert.Contains(t, second.Warnings[0], "no such host")
	assert.True(t, log.HasLevel("warn"))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestChecker_NoEndpointsWarnsThroughLogger(t *testing.T) {
	static, err := endpoint.NewStatic()
	require.NoError(t, err)
	log := logger.NewBufferLogger()
	m := metrics.New(nil)

	snap := NewChecker(static, nil, WithCheckerLogger(log), WithCheckerMetrics(m)).Snapshot(context.Background())

	assert.True(t, snap.AllSafe)
	assert.Equal(t, []string{WarningNoEndpoints}, snap.Warnings)
	assert.True(t, log.HasLevel("warn"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AllSafe))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthPolls))
}

func TestChecker_UsesClock(t *testing.T) {
	static, _ := endpoint.NewStatic()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := NewChecker(static, nil, WithClock(func() time.Time { return at })).Snapshot(context.Background())
	assert.Equal(t, at, snap.Timestamp)
}

func TestReport_Table(t *testing.T) {
	snap := Snapshot{
		Endpoints: []EndpointHealth{
			buildEndpointHealth(endpoint.Endpoint{URL: "http://a:6676", NodeID: 1}, []FacetResult{
				{Facet: FacetStarted, Status: 200}, {Facet: FacetLive, Status: 200},
				{Facet: FacetReady, Status: 200}, {Facet: FacetSafe, Status: 503},
			}),
			unreachable(endpoint.Endpoint{URL: "http://c:6676"}, AllFacets),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, snap, FormatTable))
	out := buf.String()

	for _, h := range TableHeaders {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "Refused")
	assert.Contains(t, out, "503")
	assert.Contains(t, out, "Degraded")
	assert.Contains(t, out, "Unreachable")
	assert.Contains(t, out, "All endpoints safe: false")

	rows := TableRows(snap)
	assert.Equal(t, []string{"1", "http://a:6676", "200", "200", "200", "503", "Degraded"}, rows[0])
	assert.Equal(t, "-", rows[1][0])
}

func TestReport_JSONAndYAML(t *testing.T) {
	snap := Aggregate([]EndpointHealth{
		buildEndpointHealth(endpoint.Endpoint{URL: "http://a"}, []FacetResult{{Facet: FacetSafe, Status: 200}}),
	}, time.Unix(0, 0).UTC(), "snap-1")

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, snap, FormatJSON))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["allSafe"])
	assert.Equal(t, "snap-1", decoded["id"])
	eps := decoded["endpoints"].([]interface{})
	first := eps[0].(map[string]interface{})
	assert.Equal(t, "OK", first["overall"])
	assert.Contains(t, first["facets"], "safe")

	buf.Reset()
	require.NoError(t, WriteReport(&buf, snap, FormatYAML))
	var y map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	assert.Equal(t, true, y["allSafe"])

	err := WriteReport(&buf, snap, "xml")
	require.Error(t, err)
}

func TestFacetParsing(t *testing.T) {
	f, err := ParseFacet("SAFE")
	require.NoError(t, err)
	assert.Equal(t, FacetSafe, f)
	assert.Equal(t, "/safe", f.Path())

	_, err = ParseFacet("happy")
	assert.Error(t, err)
	assert.Equal(t, "Refused", StatusText(StatusRefused))
	assert.Equal(t, "503", StatusText(503))
}
