package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/pdfremix/internal/bundle"
	"github.com/quantmind-br/pdfremix/internal/cache"
	"github.com/quantmind-br/pdfremix/internal/config"
	"github.com/quantmind-br/pdfremix/internal/fetcher"
	"github.com/quantmind-br/pdfremix/internal/manifest"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

// StylePicker chooses a style sheet when none was given
type StylePicker func(styles []manifest.Style) (string, error)

// Orchestrator coordinates the CLI workflows
type Orchestrator struct {
	config    *config.Config
	logger    *utils.Logger
	submitter Submitter
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config    *config.Config
	Verbose   bool
	Logger    *utils.Logger
	Submitter Submitter
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	submitter := opts.Submitter
	if submitter == nil {
		client, err := remix.NewClient(remix.ClientOptions{
			Endpoint: cfg.Remix.Endpoint,
			Timeout:  cfg.Remix.Timeout,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create remix client: %w", err)
		}
		submitter = client
	}

	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		submitter: submitter,
	}, nil
}

// NewSession starts a remix session backed by the orchestrator's submitter
func (o *Orchestrator) NewSession() *Session {
	return NewSession(o.submitter, o.logger)
}

// RemixOptions describes one non-interactive remix
type RemixOptions struct {
	BundlePath  string
	SourcePaths []string
	StyleSheet  string
	Output      string
	Force       bool
	PickStyle   StylePicker
}

// Remix walks a session through every step and writes the patched PDF.
// It returns the path written.
func (o *Orchestrator) Remix(ctx context.Context, opts RemixOptions) (string, error) {
	startTime := time.Now()
	session := o.NewSession()

	bundleFile, err := upload.ReadFile(opts.BundlePath)
	if err != nil {
		return "", err
	}
	if err := session.LoadBundle(bundleFile); err != nil {
		return "", err
	}
	if err := session.Next(); err != nil {
		return "", err
	}

	files, err := o.readSources(opts.SourcePaths)
	if err != nil {
		return "", err
	}
	if err := session.AddFiles(files...); err != nil {
		return "", err
	}
	if missing := session.Uploads().Missing(); len(missing) > 0 {
		return "", missingFilesError(missing)
	}
	if err := session.Next(); err != nil {
		return "", err
	}

	styleSheet := opts.StyleSheet
	if styleSheet == "" {
		if opts.PickStyle == nil {
			return "", ErrNoStyle
		}
		styleSheet, err = opts.PickStyle(session.Bundle().Manifest.Styles)
		if err != nil {
			return "", err
		}
	}
	if err := session.SelectStyle(styleSheet); err != nil {
		return "", err
	}
	if err := session.Next(); err != nil {
		return "", err
	}

	result, err := session.Remix(ctx)
	if err != nil {
		return "", err
	}

	output := opts.Output
	if output == "" {
		output = o.config.Output.File
	}
	output, err = o.SaveResult(result, output, opts.Force || o.config.Output.Overwrite)
	if err != nil {
		return "", err
	}

	o.logger.Info().
		Str("output", output).
		Dur("duration", time.Since(startTime)).
		Msg("Remix written")
	return output, nil
}

// SaveResult writes a patched PDF to output, or to the result's own file
// name when output is empty. It returns the path written.
func (o *Orchestrator) SaveResult(result *remix.Result, output string, overwrite bool) (string, error) {
	if output == "" {
		output = result.FileName
	}
	output = utils.ExpandPath(output)

	if err := utils.WriteFile(output, result.Data, overwrite); err != nil {
		return "", err
	}
	return output, nil
}

func (o *Orchestrator) readSources(paths []string) ([]*upload.File, error) {
	files := make([]*upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := upload.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if DetectInput(f.Data) != InputPDF {
			o.logger.Warn().Str("file", f.Name).Msg("Source does not look like a PDF")
		}
		files = append(files, f)
	}
	return files, nil
}

func missingFilesError(missing []string) error {
	errs := make([]error, len(missing))
	for i, name := range missing {
		errs[i] = &upload.NameError{Name: name, Err: upload.ErrMissingFile}
	}
	return errors.Join(errs...)
}

// Report describes a bundle and how a set of PDFs covers its sources
type Report struct {
	Bundle   *bundle.Bundle
	Present  []string
	Missing  []string
	Rejected map[string]error
}

// Inspect opens a bundle and checks which required files the given PDFs
// provide. PDFs that match no source are reported rather than failing.
func (o *Orchestrator) Inspect(bundlePath string, pdfPaths []string) (*Report, error) {
	b, err := bundle.NewReader(o.logger).Load(bundlePath)
	if err != nil {
		return nil, err
	}

	set := upload.NewSet(b.Manifest.Sources)
	report := &Report{Bundle: b, Rejected: make(map[string]error)}

	for _, p := range pdfPaths {
		f, err := upload.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if err := set.AddFile(f); err != nil {
			report.Rejected[f.Name] = err
		}
	}

	for _, name := range set.FileNames() {
		present, err := set.IsFilePresent(name)
		if err != nil {
			return nil, err
		}
		if present {
			report.Present = append(report.Present, name)
		} else {
			report.Missing = append(report.Missing, name)
		}
	}
	return report, nil
}

// FetchOptions describes a source download
type FetchOptions struct {
	BundlePath string
	Dir        string
	Force      bool
	NoCache    bool
}

// Fetch downloads every source named by a bundle's manifest into opts.Dir,
// verifying md5sums. It returns the paths written in manifest order.
func (o *Orchestrator) Fetch(ctx context.Context, opts FetchOptions) ([]string, error) {
	b, err := bundle.NewReader(o.logger).Load(opts.BundlePath)
	if err != nil {
		return nil, err
	}

	client, closeFn, err := o.newFetcher(!opts.NoCache)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	o.logger.Info().
		Int("sources", len(b.Manifest.Sources)).
		Str("dir", opts.Dir).
		Msg("Downloading sources")

	files, err := client.DownloadAll(ctx, b.Manifest.Sources, o.config.Fetch.Workers)
	if err != nil {
		return nil, err
	}

	dir := utils.ExpandPath(opts.Dir)
	overwrite := opts.Force || o.config.Output.Overwrite
	paths := make([]string, 0, len(files))
	var errs []error
	for _, f := range files {
		p := filepath.Join(dir, f.Name)
		if err := utils.WriteFile(p, f.Data, overwrite); err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, p)
	}
	if err := errors.Join(errs...); err != nil {
		return paths, err
	}
	return paths, nil
}

func (o *Orchestrator) newFetcher(useCache bool) (*fetcher.Client, func(), error) {
	opts := fetcher.ClientOptions{
		Timeout:    o.config.Fetch.Timeout,
		MaxRetries: o.config.Fetch.MaxRetries,
		UserAgent:  o.config.Fetch.UserAgent,
		CacheTTL:   o.config.Cache.TTL,
		Logger:     o.logger,
	}

	var store *cache.BadgerCache
	if useCache && o.config.Cache.Enabled {
		var err error
		store, err = cache.NewBadgerCache(cache.Options{
			Directory: o.config.Cache.Directory,
		})
		if err != nil {
			o.logger.Warn().Err(err).Msg("Cache unavailable, downloading without it")
		} else {
			opts.EnableCache = true
			opts.Cache = store
		}
	}

	client, err := fetcher.NewClient(opts)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}

	return client, func() {
		_ = client.Close()
		if store != nil {
			_ = store.Close()
		}
	}, nil
}

// Describe renders a one-line summary of a style for prompts and listings
func Describe(style manifest.Style) string {
	if strings.TrimSpace(style.Description) == "" {
		return fmt.Sprintf("%s (%s)", style.Name, style.StyleSheet)
	}
	return fmt.Sprintf("%s (%s): %s", style.Name, style.StyleSheet, style.Description)
}
