package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance so CLI flag bindings apply.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadWithViper loads configuration into a fresh viper instance and
// returns it alongside the config
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := LoadFrom(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// LoadFrom loads configuration through v, honoring any flags already bound
// to it. An explicit config file set with v.SetConfigFile must exist.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Config file settings
	explicit := v.ConfigFileUsed() != ""
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found, unless set explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (PDFREMIX_*)
	v.SetEnvPrefix("PDFREMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Remix defaults
	v.SetDefault("remix.endpoint", DefaultRemixEndpoint)
	v.SetDefault("remix.timeout", DefaultRemixTimeout)

	// Output defaults
	v.SetDefault("output.file", DefaultOutputFile)
	v.SetDefault("output.overwrite", false)

	// Fetch defaults
	v.SetDefault("fetch.timeout", DefaultFetchTimeout)
	v.SetDefault("fetch.max_retries", DefaultFetchMaxRetries)
	v.SetDefault("fetch.workers", DefaultFetchWorkers)
	v.SetDefault("fetch.user_agent", "")

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// EnsureCacheDir creates the cache directory if it doesn't exist
func EnsureCacheDir() error {
	return os.MkdirAll(CacheDir(), 0755)
}

// Save writes cfg as YAML to path, creating the parent directory
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
