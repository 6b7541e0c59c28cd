package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/quantmind-br/pdfremix/internal/config"
)

// ConfigValues holds form values that map to Config struct.
// Numeric and duration fields are stored as strings for form editing.
type ConfigValues struct {
	RemixEndpoint string
	RemixTimeout  string

	OutputFile      string
	OutputOverwrite bool

	FetchTimeout    string
	FetchMaxRetries string
	FetchWorkers    string
	UserAgent       string

	CacheEnabled   bool
	CacheTTL       string
	CacheDirectory string

	LogLevel  string
	LogFormat string
}

// FromConfig converts a Config to ConfigValues for form editing
func FromConfig(cfg *config.Config) *ConfigValues {
	return &ConfigValues{
		RemixEndpoint: cfg.Remix.Endpoint,
		RemixTimeout:  formatDuration(cfg.Remix.Timeout),

		OutputFile:      cfg.Output.File,
		OutputOverwrite: cfg.Output.Overwrite,

		FetchTimeout:    formatDuration(cfg.Fetch.Timeout),
		FetchMaxRetries: strconv.Itoa(cfg.Fetch.MaxRetries),
		FetchWorkers:    strconv.Itoa(cfg.Fetch.Workers),
		UserAgent:       cfg.Fetch.UserAgent,

		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       formatDuration(cfg.Cache.TTL),
		CacheDirectory: cfg.Cache.Directory,

		LogLevel:  cfg.Logging.Level,
		LogFormat: cfg.Logging.Format,
	}
}

// ToConfig converts ConfigValues back to a Config struct
func (v *ConfigValues) ToConfig() (*config.Config, error) {
	remixTimeout, err := parseDurationOrDefault(v.RemixTimeout, config.DefaultRemixTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid remix timeout: %w", err)
	}

	fetchTimeout, err := parseDurationOrDefault(v.FetchTimeout, config.DefaultFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch timeout: %w", err)
	}

	maxRetries, err := parseIntOrDefault(v.FetchMaxRetries, config.DefaultFetchMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("invalid max_retries: %w", err)
	}

	workers, err := parseIntOrDefault(v.FetchWorkers, config.DefaultFetchWorkers)
	if err != nil {
		return nil, fmt.Errorf("invalid workers: %w", err)
	}

	cacheTTL, err := parseDurationOrDefault(v.CacheTTL, config.DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache_ttl: %w", err)
	}

	cfg := &config.Config{
		Remix: config.RemixConfig{
			Endpoint: v.RemixEndpoint,
			Timeout:  remixTimeout,
		},
		Output: config.OutputConfig{
			File:      v.OutputFile,
			Overwrite: v.OutputOverwrite,
		},
		Fetch: config.FetchConfig{
			Timeout:    fetchTimeout,
			MaxRetries: maxRetries,
			Workers:    workers,
			UserAgent:  v.UserAgent,
		},
		Cache: config.CacheConfig{
			Enabled:   v.CacheEnabled,
			TTL:       cacheTTL,
			Directory: v.CacheDirectory,
		},
		Logging: config.LoggingConfig{
			Level:  v.LogLevel,
			Format: v.LogFormat,
		},
	}

	return cfg, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func parseDurationOrDefault(s string, defaultVal time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(s)
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
