package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/logger"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gridctl only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade gridctl")
	}

	if cfg.Current != "" {
		if _, ok := cfg.Clusters[cfg.Current]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Current cluster '%s' is not defined under clusters", cfg.Current),
				"Add it under 'clusters:' or fix 'current:'")
		}
	}

	durations := []struct {
		key   string
		value time.Duration
	}{
		{"health.request_timeout", cfg.Health.RequestTimeout},
		{"health.poll_interval", cfg.Health.PollInterval},
		{"dashboard.refresh_interval", cfg.Dashboard.RefreshInterval},
		{"dashboard.fetch_timeout", cfg.Dashboard.FetchTimeout},
		{"management.breaker_timeout", cfg.Management.BreakerTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' must be a positive duration", d.key),
				"Use a value like 5s or 1m")
		}
	}

	if cfg.Health.Concurrency < 1 {
		return errors.New(errors.ErrConfig,
			"'health.concurrency' must be at least 1",
			"Remove the setting to use the default of 16")
	}
	if cfg.Dashboard.MaxHeight < 0 {
		return errors.New(errors.ErrConfig,
			"'dashboard.max_height' cannot be negative",
			"Use 0 to size panels to the terminal")
	}
	if cfg.Management.RateLimit <= 0 || cfg.Management.Burst < 1 {
		return errors.New(errors.ErrConfig,
			"'management.rate_limit' and 'management.burst' must be positive",
			"Remove the settings to use the defaults")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid 'log.level'",
			"Use one of: debug, info, warn, error")
	}
	if f := strings.ToLower(cfg.Log.Format); f != "" && f != "console" && f != "json" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid 'log.format': %s", cfg.Log.Format),
			"Use console or json")
	}

	for name, cl := range cfg.Clusters {
		if cl.URL == "" && len(cl.Endpoints) == 0 && cl.NSLookup == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Cluster '%s' has no url, endpoints or nslookup", name),
				"Give it at least one way to reach the cluster")
		}
	}

	return nil
}
