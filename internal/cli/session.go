package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rileyhilliard/gridctl/internal/config"
	"github.com/rileyhilliard/gridctl/internal/endpoint"
	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/rileyhilliard/gridctl/internal/mgmt"
	"github.com/rileyhilliard/gridctl/internal/tracing"
	"github.com/rileyhilliard/gridctl/internal/ui"
)

// session carries what every command needs once global flags are applied.
// Close must be called to flush logs and traces.
type session struct {
	cfg     *config.Config
	cluster string
	log     logger.Logger
	metrics *metrics.Metrics
	closers []func()
}

// openSession loads config and sets up logging, tracing and colors.
// Interactive sessions stay silent on stderr unless a log file is set,
// since log lines would tear the dashboard.
func openSession(interactive bool) (*session, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if logFileFlag != "" {
		cfg.Log.File = logFileFlag
	}

	s := &session{cfg: cfg, cluster: clusterFlag, metrics: metrics.New(nil)}

	if interactive && cfg.Log.File == "" {
		s.log = logger.Noop()
	} else {
		log, sync, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't set up logging",
				"Check --log-level and --log-file")
		}
		s.log = log
		s.closers = append(s.closers, sync)
	}
	logger.SetDefault(s.log)

	if traceFileFlag != "" {
		f, err := os.Create(traceFileFlag)
		if err != nil {
			s.Close()
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't create trace file %s", traceFileFlag),
				"Check that the directory exists and is writable")
		}
		shutdown, err := tracing.Setup(f)
		if err != nil {
			_ = f.Close()
			s.Close()
			return nil, errors.Wrap(err, "Couldn't start tracing")
		}
		s.closers = append(s.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
			_ = f.Close()
		})
	}

	ui.ConfigureColors(os.Stdout, noColorFlag)
	return s, nil
}

// newSession wraps an already loaded config. Used by tests.
func newSession(cfg *config.Config, log logger.Logger) *session {
	if log == nil {
		log = logger.Noop()
	}
	return &session{cfg: cfg, log: log, metrics: metrics.New(nil)}
}

// Close releases everything the session opened, newest first.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// selectedCluster returns the cluster chosen by --cluster or 'current'.
// Naming a cluster that isn't configured is an error; having none is not.
func (s *session) selectedCluster() (config.Cluster, error) {
	cl, ok := s.cfg.CurrentCluster(s.cluster)
	if !ok && s.cluster != "" {
		return config.Cluster{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Cluster '%s' not found in config", s.cluster),
			"Add it under 'clusters' in your config file")
	}
	return cl, nil
}

// resolver builds the endpoint resolver from flags, falling back to the
// selected cluster's config. A list that was given but holds no endpoints
// resolves to nothing, which the checker reports as vacuously safe. Only
// naming no source at all is an error.
func (s *session) resolver(ef EndpointFlags) (endpoint.Resolver, error) {
	opts := endpoint.Options{
		Endpoints: endpoint.ParseList(ef.Endpoints),
		NSLookup:  ef.NSLookup,
	}
	given := ef.Endpoints != "" || ef.NSLookup != ""
	if !given {
		cl, err := s.selectedCluster()
		if err != nil {
			return nil, err
		}
		opts.Endpoints = cl.Endpoints
		opts.NSLookup = cl.NSLookup
		given = cl.Endpoints != nil || cl.NSLookup != ""
	}
	if given && opts.NSLookup == "" {
		static, err := endpoint.NewStatic(opts.Endpoints...)
		if err != nil {
			return nil, err
		}
		return static, nil
	}
	return endpoint.NewResolver(opts)
}

// hasEndpoints reports whether flags or config name any health endpoints.
func (s *session) hasEndpoints(ef EndpointFlags) bool {
	if ef.Endpoints != "" || ef.NSLookup != "" {
		return true
	}
	cl, _ := s.cfg.CurrentCluster(s.cluster)
	return cl.Endpoints != nil || cl.NSLookup != ""
}

// checker builds a health checker. requestTimeout overrides config when positive.
func (s *session) checker(ef EndpointFlags, requestTimeout time.Duration) (*health.Checker, error) {
	res, err := s.resolver(ef)
	if err != nil {
		return nil, err
	}
	if requestTimeout <= 0 {
		requestTimeout = s.cfg.Health.RequestTimeout
	}
	poller := health.NewPoller(
		health.WithRequestTimeout(requestTimeout),
		health.WithConcurrency(s.cfg.Health.Concurrency),
		health.WithLogger(logger.Named(s.log, "poller")),
		health.WithMetrics(s.metrics),
	)
	return health.NewChecker(res, poller,
		health.WithCheckerLogger(s.log),
		health.WithCheckerMetrics(s.metrics),
	), nil
}

// mgmtClient builds the management client for url, or the selected cluster's
// URL. It returns nil when neither is set.
func (s *session) mgmtClient(url string) (*mgmt.Client, error) {
	if url == "" {
		cl, err := s.selectedCluster()
		if err != nil {
			return nil, err
		}
		url = cl.URL
	}
	if url == "" {
		return nil, nil
	}
	m := s.cfg.Management
	return mgmt.NewClient(mgmt.Options{
		BaseURL:         url,
		RateLimit:       m.RateLimit,
		Burst:           m.Burst,
		BreakerFailures: m.BreakerFailures,
		BreakerTimeout:  m.BreakerTimeout,
		Logger:          logger.Named(s.log, "mgmt"),
		Metrics:         s.metrics,
	})
}
