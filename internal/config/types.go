package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Config represents the complete gridctl configuration file.
type Config struct {
	Version    int                `yaml:"version" mapstructure:"version"`
	Clusters   map[string]Cluster `yaml:"clusters" mapstructure:"clusters"`
	Current    string             `yaml:"current" mapstructure:"current"`
	Health     HealthConfig       `yaml:"health" mapstructure:"health"`
	Dashboard  DashboardConfig    `yaml:"dashboard" mapstructure:"dashboard"`
	Management ManagementConfig   `yaml:"management" mapstructure:"management"`
	Log        LogConfig          `yaml:"log" mapstructure:"log"`
}

// Cluster is a named connection to one data grid.
type Cluster struct {
	// URL is the management REST root, e.g.
	// http://host:30000/management/coherence/cluster.
	URL string `yaml:"url" mapstructure:"url"`

	// Endpoints are health endpoint base URLs (host:port or full URL).
	Endpoints []string `yaml:"endpoints" mapstructure:"endpoints"`

	// NSLookup is a host:port whose DNS records list the health endpoints.
	NSLookup string `yaml:"nslookup" mapstructure:"nslookup"`
}

// HealthConfig controls health polling.
type HealthConfig struct {
	// RequestTimeout bounds each individual facet request.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// PollInterval is the sleep between polls while waiting for safe.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// Concurrency caps in-flight facet requests per poll cycle.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// DashboardConfig controls the panel dashboard.
type DashboardConfig struct {
	RefreshInterval time.Duration     `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	FetchTimeout    time.Duration     `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	Layout          string            `yaml:"layout" mapstructure:"layout"`
	Padding         bool              `yaml:"padding" mapstructure:"padding"`
	MaxHeight       int               `yaml:"max_height" mapstructure:"max_height"`
	Layouts         map[string]string `yaml:"layouts" mapstructure:"layouts"`
}

// ManagementConfig controls the management REST client.
type ManagementConfig struct {
	// RateLimit is the steady-state requests per second.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`

	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures uint32        `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Clusters: make(map[string]Cluster),
		Health: HealthConfig{
			RequestTimeout: 5 * time.Second,
			PollInterval:   5 * time.Second,
			Concurrency:    16,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: 5 * time.Second,
			FetchTimeout:    10 * time.Second,
			Layout:          "default",
			Layouts:         make(map[string]string),
		},
		Management: ManagementConfig{
			RateLimit:       20,
			Burst:           10,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// CurrentCluster returns the selected cluster, if any. name overrides Current.
func (c *Config) CurrentCluster(name string) (Cluster, bool) {
	if name == "" {
		name = c.Current
	}
	if name == "" {
		return Cluster{}, false
	}
	cl, ok := c.Clusters[name]
	return cl, ok
}
