package remix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
	"github.com/quantmind-br/pdfremix/pkg/version"
)

// Multipart field names understood by the patch service
const (
	FieldStyleSheet = "cssName"
	FieldBundle     = "bundle"
	FieldSources    = "pdfs"
)

// DefaultOutputName is the file name offered for a successful remix
const DefaultOutputName = "patched.pdf"

// Request is one remix submission
type Request struct {
	StyleSheet string
	Bundle     *upload.File
	Sources    []*upload.File
}

// Result is the patched PDF returned by the service
type Result struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Client submits remix requests to the patch service. Each Submit performs
// exactly one HTTP request; retrying is left to the caller.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *utils.Logger
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout: 2 * time.Minute,
	}
}

// NewClient creates a new remix client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	return &Client{
		endpoint:   opts.Endpoint,
		httpClient: httpClient,
		logger:     logger.WithComponent("remix"),
	}, nil
}

// Endpoint returns the configured service URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts the style sheet, bundle and source files as multipart form
// data. A non-2xx response is returned as a *RemoteError with the server's
// text.
func (c *Client) Submit(ctx context.Context, req Request) (*Result, error) {
	body, contentType, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debug().
		Str("endpoint", c.endpoint).
		Str("style_sheet", req.StyleSheet).
		Int("sources", len(req.Sources)).
		Msg("Submitting remix request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("remix request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug().Int("status", resp.StatusCode).Msg("Remix rejected")
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	return &Result{
		FileName:    DefaultOutputName,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// EncodeRequest builds the multipart payload and its Content-Type header
func EncodeRequest(req Request) (io.Reader, string, error) {
	if req.StyleSheet == "" {
		return nil, "", ErrNoStyleSheet
	}
	if req.Bundle == nil {
		return nil, "", ErrNoBundle
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldStyleSheet, req.StyleSheet); err != nil {
		return nil, "", err
	}
	if err := writeFile(w, FieldBundle, req.Bundle); err != nil {
		return nil, "", err
	}
	for _, src := range req.Sources {
		if err := writeFile(w, FieldSources, src); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *upload.File) error {
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", f.Name, err)
	}
	if _, err := io.Copy(part, f.Reader()); err != nil {
		return fmt.Errorf("failed to add %s: %w", f.Name, err)
	}
	return nil
}
