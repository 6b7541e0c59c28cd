package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantmind-br/pdfremix/internal/config"
	"github.com/quantmind-br/pdfremix/internal/domain"
	"github.com/quantmind-br/pdfremix/internal/manifest"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Cache.Directory = t.TempDir()
	cfg.Fetch.MaxRetries = 0
	cfg.Fetch.Timeout = 10 * time.Second
	cfg.Output.File = filepath.Join(t.TempDir(), "patched.pdf")
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, sub Submitter) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(OrchestratorOptions{
		Config:    cfg,
		Logger:    utils.NewNopLogger(),
		Submitter: sub,
	})
	require.NoError(t, err)
	return o
}

// remixInputs writes a bundle and both source PDFs to a temp dir
func remixInputs(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	bundlePath := writeTemp(t, dir, "bundle.zip", bundleData(t, "http://example.com", pdfMD5))
	return bundlePath, []string{
		writeTemp(t, dir, "chapter_1.pdf", pdfContent),
		writeTemp(t, dir, "title_pages.pdf", pdfContent),
	}
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewOrchestrator(OrchestratorOptions{})
		assert.Error(t, err)
	})

	t.Run("builds remix client from config", func(t *testing.T) {
		o, err := NewOrchestrator(OrchestratorOptions{Config: config.Default(), Logger: utils.NewNopLogger()})
		require.NoError(t, err)
		assert.NotNil(t, o.submitter)
	})

	t.Run("empty endpoint rejected", func(t *testing.T) {
		cfg := config.Default()
		cfg.Remix.Endpoint = ""
		_, err := NewOrchestrator(OrchestratorOptions{Config: cfg, Logger: utils.NewNopLogger()})
		assert.Error(t, err)
	})
}

func TestOrchestrator_Remix(t *testing.T) {
	cfg := testConfig(t)
	sub := &fakeSubmitter{result: okResult()}
	o := newTestOrchestrator(t, cfg, sub)
	bundlePath, sources := remixInputs(t)

	out, err := o.Remix(context.Background(), RemixOptions{
		BundlePath:  bundlePath,
		SourcePaths: sources,
		StyleSheet:  "large_print.css",
	})
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.File, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, okResult().Data, data)

	require.Equal(t, 1, sub.calls())
	assert.Equal(t, "large_print.css", sub.requests[0].StyleSheet)

	t.Run("existing output kept without force", func(t *testing.T) {
		_, err := o.Remix(context.Background(), RemixOptions{
			BundlePath:  bundlePath,
			SourcePaths: sources,
			StyleSheet:  "book.css",
		})
		assert.ErrorIs(t, err, utils.ErrFileExists)
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := o.Remix(context.Background(), RemixOptions{
			BundlePath:  bundlePath,
			SourcePaths: sources,
			StyleSheet:  "book.css",
			Force:       true,
		})
		assert.NoError(t, err)
	})
}

func TestOrchestrator_Remix_PickStyle(t *testing.T) {
	sub := &fakeSubmitter{result: okResult()}
	o := newTestOrchestrator(t, testConfig(t), sub)
	bundlePath, sources := remixInputs(t)

	var offered []manifest.Style
	output := filepath.Join(t.TempDir(), "out.pdf")
	_, err := o.Remix(context.Background(), RemixOptions{
		BundlePath:  bundlePath,
		SourcePaths: sources,
		Output:      output,
		PickStyle: func(styles []manifest.Style) (string, error) {
			offered = styles
			return styles[1].StyleSheet, nil
		},
	})
	require.NoError(t, err)
	assert.Len(t, offered, 2)
	assert.Equal(t, "large_print.css", sub.requests[0].StyleSheet)
	assert.FileExists(t, output)
}

func TestOrchestrator_Remix_Errors(t *testing.T) {
	bundlePath, sources := remixInputs(t)

	tests := []struct {
		name    string
		opts    RemixOptions
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing source",
			opts:    RemixOptions{BundlePath: bundlePath, SourcePaths: sources[:1], StyleSheet: "book.css"},
			wantErr: upload.ErrMissingFile,
			wantMsg: "required file title_pages.pdf is missing",
		},
		{
			name:    "no style and no picker",
			opts:    RemixOptions{BundlePath: bundlePath, SourcePaths: sources},
			wantErr: ErrNoStyle,
		},
		{
			name:    "unknown style",
			opts:    RemixOptions{BundlePath: bundlePath, SourcePaths: sources, StyleSheet: "nope.css"},
			wantErr: manifest.ErrUnknownStyle,
		},
		{
			name:    "unrelated source",
			opts:    RemixOptions{BundlePath: bundlePath, SourcePaths: append(sources, bundlePath), StyleSheet: "book.css"},
			wantErr: upload.ErrNotRequired,
			wantMsg: "bundle.zip is not one of the required source PDF files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{result: okResult()}
			o := newTestOrchestrator(t, testConfig(t), sub)

			_, err := o.Remix(context.Background(), tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
			assert.Zero(t, sub.calls())
		})
	}
}

func TestOrchestrator_SaveResult(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(t), &fakeSubmitter{})
	dir := t.TempDir()

	t.Run("explicit path", func(t *testing.T) {
		out := filepath.Join(dir, "nested", "out.pdf")
		path, err := o.SaveResult(okResult(), out, false)
		require.NoError(t, err)
		assert.Equal(t, out, path)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, okResult().Data, data)
	})

	t.Run("existing file needs overwrite", func(t *testing.T) {
		out := filepath.Join(dir, "existing.pdf")
		require.NoError(t, os.WriteFile(out, []byte("keep"), 0644))

		_, err := o.SaveResult(okResult(), out, false)
		require.Error(t, err)

		_, err = o.SaveResult(okResult(), out, true)
		require.NoError(t, err)
	})

	t.Run("falls back to result name", func(t *testing.T) {
		t.Chdir(t.TempDir())
		path, err := o.SaveResult(okResult(), "", false)
		require.NoError(t, err)
		assert.Equal(t, "patched.pdf", path)
		assert.FileExists(t, "patched.pdf")
	})
}

func TestOrchestrator_Inspect(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(t), &fakeSubmitter{})
	dir := t.TempDir()
	bundlePath := writeTemp(t, dir, "bundle.zip", bundleData(t, "http://example.com", pdfMD5))
	chapter := writeTemp(t, dir, "chapter_1.pdf", pdfContent)
	extra := writeTemp(t, dir, "extra.pdf", pdfContent)

	report, err := o.Inspect(bundlePath, []string{chapter, extra})
	require.NoError(t, err)

	assert.Len(t, report.Bundle.Manifest.Styles, 2)
	assert.Equal(t, []string{"chapter_1.pdf"}, report.Present)
	assert.Equal(t, []string{"title_pages.pdf"}, report.Missing)
	require.Contains(t, report.Rejected, "extra.pdf")
	assert.ErrorIs(t, report.Rejected["extra.pdf"], upload.ErrNotRequired)

	_, err = o.Inspect(filepath.Join(dir, "nope.zip"), nil)
	assert.Error(t, err)
}

func TestOrchestrator_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pdfContent)
	}))
	defer server.Close()

	o := newTestOrchestrator(t, testConfig(t), &fakeSubmitter{})
	bundlePath := writeTemp(t, t.TempDir(), "bundle.zip", bundleData(t, server.URL, pdfMD5))
	outDir := filepath.Join(t.TempDir(), "sources")

	paths, err := o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: outDir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(outDir, "title_pages.pdf"),
		filepath.Join(outDir, "chapter_1.pdf"),
	}, paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, pdfContent, data)
	}

	_, err = o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: outDir})
	assert.ErrorIs(t, err, utils.ErrFileExists)

	_, err = o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: outDir, Force: true})
	assert.NoError(t, err)
}

func TestOrchestrator_Fetch_WithCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write(pdfContent)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Fetch.Workers = 1
	o := newTestOrchestrator(t, cfg, &fakeSubmitter{})
	bundlePath := writeTemp(t, t.TempDir(), "bundle.zip", bundleData(t, server.URL, pdfMD5))

	_, err := o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: t.TempDir()})
	require.NoError(t, err)
	_, err = o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, int32(2), requests.Load())
}

func TestOrchestrator_Fetch_ChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 tampered"))
	}))
	defer server.Close()

	o := newTestOrchestrator(t, testConfig(t), &fakeSubmitter{})
	bundlePath := writeTemp(t, t.TempDir(), "bundle.zip", bundleData(t, server.URL, pdfMD5))
	outDir := filepath.Join(t.TempDir(), "sources")

	paths, err := o.Fetch(context.Background(), FetchOptions{BundlePath: bundlePath, Dir: outDir})
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
	assert.Contains(t, err.Error(), "title_pages.pdf")
	assert.Empty(t, paths)
	assert.NoDirExists(t, outDir)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Traditional (book.css): Classic.", Describe(manifest.Style{Name: "Traditional", StyleSheet: "book.css", Description: "Classic."}))
	assert.Equal(t, "Large Print (large_print.css)", Describe(manifest.Style{Name: "Large Print", StyleSheet: "large_print.css"}))
}
