package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Remix defaults
	DefaultRemixEndpoint = "https://pdfpatch-gyeisy4svq-nn.a.run.app/api/v0/patch"
	DefaultRemixTimeout  = 2 * time.Minute

	// Output defaults
	DefaultOutputFile = "patched.pdf"

	// Fetch defaults
	DefaultFetchTimeout    = 90 * time.Second
	DefaultFetchMaxRetries = 3
	DefaultFetchWorkers    = 4

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 7 * 24 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pdfremix"
	}
	return filepath.Join(home, ".pdfremix")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Remix: RemixConfig{
			Endpoint: DefaultRemixEndpoint,
			Timeout:  DefaultRemixTimeout,
		},
		Output: OutputConfig{
			File:      DefaultOutputFile,
			Overwrite: false,
		},
		Fetch: FetchConfig{
			Timeout:    DefaultFetchTimeout,
			MaxRetries: DefaultFetchMaxRetries,
			Workers:    DefaultFetchWorkers,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
