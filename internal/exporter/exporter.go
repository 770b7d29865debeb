// Package exporter serves the latest health snapshot over HTTP so load
// balancers and scrapers can read the cluster's safe verdict.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultListen is the address `serve health` binds by default.
const DefaultListen = ":9612"

const shutdownTimeout = 5 * time.Second

// Server polls in the background and serves the latest completed snapshot.
type Server struct {
	checker  health.Snapshotter
	interval time.Duration
	metrics  *metrics.Metrics
	log      logger.Logger
	router   *chi.Mux

	mu     sync.RWMutex
	latest *health.Snapshot
}

// Options configures a Server.
type Options struct {
	PollInterval time.Duration
	Metrics      *metrics.Metrics
	Logger       logger.Logger
}

// New creates a server over checker.
func New(checker health.Snapshotter, opts Options) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = health.DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	s := &Server{
		checker:  checker,
		interval: opts.PollInterval,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/safe", s.handleSafe)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Latest returns the last completed snapshot, if any.
func (s *Server) Latest() (health.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return health.Snapshot{}, false
	}
	return *s.latest, true
}

// PollOnce takes one snapshot and publishes it.
func (s *Server) PollOnce(ctx context.Context) health.Snapshot {
	snap := s.checker.Snapshot(ctx)
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()
	return snap
}

// Run polls until ctx is done. A cycle starts only after the previous one
// was published, so the latest completed cycle always wins.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		snap := s.PollOnce(ctx)
		s.log.Debug("exporter: snapshot %s all safe: %t", snap.ID, snap.AllSafe)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ListenAndServe serves on addr and polls in the background until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(ctx)
	})
	g.Go(func() error {
		s.log.Info("exporter: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := health.WriteReport(&buf, snap, health.FormatJSON); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// handleSafe answers 200 only when the latest snapshot is all safe.
func (s *Server) handleSafe(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	snap, ok := s.Latest()
	if !ok || !snap.AllSafe {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not safe\n"))
		return
	}
	_, _ = w.Write([]byte("safe\n"))
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("exporter: %s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			middleware.GetReqID(r.Context()))
	})
}
