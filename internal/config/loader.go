package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".gridctl.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/gridctl"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. GRIDCTL_HEALTH_POLL_INTERVAL.
	EnvPrefix = "GRIDCTL"
)

// Load reads config from the specified path, with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Create "+ConfigFileName+" or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .gridctl.yaml in current directory
// 3. .gridctl.yaml in parent directories (stops at git root or home)
// 4. ~/.config/gridctl/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads a .env file if present, then the config found via
// Find(explicit), or defaults (still honoring environment overrides) when
// there is no config file.
func LoadOrDefault(explicit string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read .env file",
			"Check the KEY=value syntax in .env")
	}

	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg, err = parseConfig(newViper(), "")
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance with defaults and env overrides wired.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	if cfg.Clusters == nil {
		cfg.Clusters = make(map[string]Cluster)
	}
	if cfg.Dashboard.Layouts == nil {
		cfg.Dashboard.Layouts = make(map[string]string)
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
// even when the file does not mention it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("current", "")
	v.SetDefault("health.request_timeout", d.Health.RequestTimeout)
	v.SetDefault("health.poll_interval", d.Health.PollInterval)
	v.SetDefault("health.concurrency", d.Health.Concurrency)
	v.SetDefault("dashboard.refresh_interval", d.Dashboard.RefreshInterval)
	v.SetDefault("dashboard.fetch_timeout", d.Dashboard.FetchTimeout)
	v.SetDefault("dashboard.layout", d.Dashboard.Layout)
	v.SetDefault("dashboard.padding", d.Dashboard.Padding)
	v.SetDefault("dashboard.max_height", d.Dashboard.MaxHeight)
	v.SetDefault("management.rate_limit", d.Management.RateLimit)
	v.SetDefault("management.burst", d.Management.Burst)
	v.SetDefault("management.breaker_failures", d.Management.BreakerFailures)
	v.SetDefault("management.breaker_timeout", d.Management.BreakerTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

// loadDotEnv loads .env from the working directory when present.
// Existing environment variables win over the file.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
