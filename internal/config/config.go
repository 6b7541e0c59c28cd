package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/quantmind-br/pdfremix/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Remix   RemixConfig   `mapstructure:"remix" yaml:"remix"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// RemixConfig contains remote patch service settings
type RemixConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	File      string `mapstructure:"file" yaml:"file"`
	Overwrite bool   `mapstructure:"overwrite" yaml:"overwrite"`
}

// FetchConfig contains source download settings
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Workers    int           `mapstructure:"workers" yaml:"workers"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Remix.Endpoint == "" {
		c.Remix.Endpoint = DefaultRemixEndpoint
	}
	u, err := url.Parse(c.Remix.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid remix.endpoint %q: must be an http(s) URL", c.Remix.Endpoint)
	}
	if c.Remix.Timeout < time.Second {
		c.Remix.Timeout = DefaultRemixTimeout
	}
	if c.Output.File == "" {
		c.Output.File = DefaultOutputFile
	}
	if c.Fetch.Timeout < time.Second {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.MaxRetries < 0 {
		c.Fetch.MaxRetries = DefaultFetchMaxRetries
	}
	if c.Fetch.Workers < 1 {
		c.Fetch.Workers = DefaultFetchWorkers
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = CacheDir()
	} else {
		c.Cache.Directory = utils.ExpandPath(c.Cache.Directory)
	}
	return nil
}
