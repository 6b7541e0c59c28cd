package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/quantmind-br/pdfremix/internal/cache"
	"github.com/quantmind-br/pdfremix/internal/domain"
	"github.com/quantmind-br/pdfremix/internal/manifest"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

// ErrInvalidFileName indicates a manifest file name that cannot be written
// safely to disk
var ErrInvalidFileName = errors.New("invalid source file name")

// Client downloads source PDFs named in a manifest
type Client struct {
	tlsClient    tls_client.HttpClient
	userAgent    string
	retrier      *Retrier
	cache        domain.Cache
	cacheEnabled bool
	cacheTTL     time.Duration
	logger       *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	EnableCache bool
	CacheTTL    time.Duration
	Cache       domain.Cache
	UserAgent   string
	ProxyURL    string
	Logger      *utils.Logger
	Retrier     *Retrier
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:     90 * time.Second,
		MaxRetries:  3,
		EnableCache: true,
		CacheTTL:    7 * 24 * time.Hour,
	}
}

// NewClient creates a new download client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(opts.Timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
	}
	if opts.ProxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	retrier := opts.Retrier
	if retrier == nil {
		ropts := DefaultRetrierOptions()
		ropts.MaxRetries = opts.MaxRetries
		retrier = NewRetrier(ropts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Client{
		tlsClient:    tlsClient,
		userAgent:    opts.UserAgent,
		retrier:      retrier,
		cache:        opts.Cache,
		cacheEnabled: opts.EnableCache,
		cacheTTL:     opts.CacheTTL,
		logger:       logger.WithComponent("fetcher"),
	}, nil
}

// Get fetches the body at url, retrying transient failures
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.retrier.Retry(ctx, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Download fetches src from its URL and verifies its md5sum. Verified
// content is cached by URL; a cached copy that no longer verifies is
// discarded and fetched again.
func (c *Client) Download(ctx context.Context, src manifest.Source) (*upload.File, error) {
	if !utils.IsValidFilename(src.FileName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileName, src.FileName)
	}
	log := c.logger.WithFile(src.FileName)
	key := cache.SourceKey(src.URL)

	if c.useCache() {
		data, err := c.cache.Get(ctx, key)
		if err == nil {
			if verifyErr := Verify(src, data); verifyErr == nil {
				log.Debug().Str("url", src.URL).Msg("Source served from cache")
				return upload.NewFile(src.FileName, data), nil
			}
			_ = c.cache.Delete(ctx, key)
		}
	}

	log.Info().Str("url", src.URL).Msg("Downloading source")
	data, err := c.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if err := Verify(src, data); err != nil {
		return nil, err
	}

	if c.useCache() {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache source")
		}
	}

	return upload.NewFile(src.FileName, data), nil
}

// DownloadAll downloads every source with up to workers concurrent
// requests. Files are returned in source order; failures are joined.
func (c *Client) DownloadAll(ctx context.Context, sources []manifest.Source, workers int) ([]*upload.File, error) {
	files := make([]*upload.File, len(sources))
	indexes := make([]int, len(sources))
	for i := range indexes {
		indexes[i] = i
	}

	errs := utils.RunEach(ctx, workers, indexes, func(ctx context.Context, i int) error {
		f, err := c.Download(ctx, sources[i])
		if err != nil {
			return fmt.Errorf("%s: %w", sources[i].FileName, err)
		}
		files[i] = f
		return nil
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return files, nil
}

// Verify checks data against the source's md5sum. An empty md5sum is
// accepted without checking.
func Verify(src manifest.Source, data []byte) error {
	if src.MD5Sum == "" {
		return nil
	}
	actual := upload.NewFile(src.FileName, data).MD5()
	if !strings.EqualFold(actual, strings.TrimSpace(src.MD5Sum)) {
		return &domain.ChecksumError{
			FileName: src.FileName,
			Expected: src.MD5Sum,
			Actual:   actual,
		}
	}
	return nil
}

func (c *Client) useCache() bool {
	return c.cacheEnabled && c.cache != nil
}

func (c *Client) doRequest(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range DownloadHeaders(c.userAgent) {
		req.Header.Set(k, v)
	}

	resp, err := c.tlsClient.Do(req)
	if err != nil {
		if ctx.Err() == nil && isTimeout(err) {
			err = fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, domain.NewFetchError(targetURL, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		statusErr := fmt.Errorf("HTTP %d", resp.StatusCode)
		if resp.StatusCode == fhttp.StatusTooManyRequests {
			statusErr = fmt.Errorf("HTTP %d: %w", resp.StatusCode, domain.ErrRateLimited)
		}
		fetchErr := domain.NewFetchError(targetURL, resp.StatusCode, statusErr)
		if ShouldRetryStatus(resp.StatusCode) {
			return nil, &domain.RetryableError{
				Err:        fetchErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return nil, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// isTimeout reports whether a transport error was the client timeout firing
func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// SetCache sets the cache implementation
func (c *Client) SetCache(cache domain.Cache) {
	c.cache = cache
}

// Close releases client resources
func (c *Client) Close() error {
	return nil
}
