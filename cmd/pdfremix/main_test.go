package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pdfremix/internal/config"
	"github.com/quantmind-br/pdfremix/internal/manifest"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/tui"
	"github.com/quantmind-br/pdfremix/internal/upload"
)

const manifestTemplate = `
sources:
  - file_name: title_pages.pdf
    url: %[1]s/title_pages.pdf
    md5sum: %[2]s
  - file_name: chapter_1.pdf
    url: %[1]s/chapter_1.pdf
    md5sum: %[2]s
styles:
  - name: Traditional
    description: Classical rendering of this iconic text.
    style_sheet: book.css
  - name: Large Print
    description: ""
    style_sheet: large_print.css
`

var pdfContent = []byte("%PDF-1.4 test")

func pdfMD5() string {
	sum := md5.Sum(pdfContent)
	return hex.EncodeToString(sum[:])
}

// setupHome isolates config and cache lookups in a temp HOME
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeBundle(t *testing.T, dir, baseURL string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("manifest.yml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, manifestTemplate, baseURL, pdfMD5())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	p := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
	return p
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, pdfContent, 0644))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// remixServer records the multipart fields of each request
type remixServer struct {
	mu         sync.Mutex
	styleSheet string
	bundle     string
	sources    []string
}

func (s *remixServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.styleSheet = r.FormValue("cssName")
		if fh := r.MultipartForm.File["bundle"]; len(fh) == 1 {
			s.bundle = fh[0].Filename
		}
		s.sources = nil
		for _, fh := range r.MultipartForm.File["pdfs"] {
			s.sources = append(s.sources, fh.Filename)
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4 patched")
	}
}

func TestRemixCmd(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()

	rs := &remixServer{}
	server := httptest.NewServer(rs.handler(t))
	defer server.Close()

	bundlePath := writeBundle(t, dir, "http://example.com")
	title := writePDF(t, dir, "title_pages.pdf")
	chapter := writePDF(t, dir, "chapter_1.pdf")
	outPath := filepath.Join(dir, "out", "patched.pdf")

	out, err := execute(t, "remix", bundlePath, title, chapter,
		"--endpoint", server.URL, "--style", "large_print.css", "-o", outPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Saved "+outPath)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 patched", string(data))

	rs.mu.Lock()
	defer rs.mu.Unlock()
	assert.Equal(t, "large_print.css", rs.styleSheet)
	assert.Equal(t, "bundle.zip", rs.bundle)
	assert.Equal(t, []string{"title_pages.pdf", "chapter_1.pdf"}, rs.sources)
}

func TestRemixCmd_PicksStyle(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()

	rs := &remixServer{}
	server := httptest.NewServer(rs.handler(t))
	defer server.Close()

	orig := pickStyle
	defer func() { pickStyle = orig }()
	var offered []manifest.Style
	pickStyle = func(styles []manifest.Style) (string, error) {
		offered = styles
		return styles[0].StyleSheet, nil
	}

	bundlePath := writeBundle(t, dir, "http://example.com")
	outPath := filepath.Join(dir, "patched.pdf")

	_, err := execute(t, "remix", bundlePath,
		writePDF(t, dir, "title_pages.pdf"), writePDF(t, dir, "chapter_1.pdf"),
		"--endpoint", server.URL, "-o", outPath)
	require.NoError(t, err)

	require.Len(t, offered, 2)
	assert.Equal(t, "book.css", rs.styleSheet)
	assert.FileExists(t, outPath)
}

func TestRemixCmd_Errors(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()

	rs := &remixServer{}
	server := httptest.NewServer(rs.handler(t))
	defer server.Close()

	bundlePath := writeBundle(t, dir, "http://example.com")
	title := writePDF(t, dir, "title_pages.pdf")
	chapter := writePDF(t, dir, "chapter_1.pdf")

	existing := filepath.Join(dir, "existing.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0644))

	t.Run("missing source", func(t *testing.T) {
		_, err := execute(t, "remix", bundlePath, title,
			"--endpoint", server.URL, "--style", "book.css", "-o", filepath.Join(dir, "a.pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, upload.ErrMissingFile)
		assert.Contains(t, err.Error(), "chapter_1.pdf")
	})

	t.Run("existing output without force", func(t *testing.T) {
		_, err := execute(t, "remix", bundlePath, title, chapter,
			"--endpoint", server.URL, "--style", "book.css", "-o", existing)
		require.Error(t, err)

		data, readErr := os.ReadFile(existing)
		require.NoError(t, readErr)
		assert.Equal(t, "keep", string(data))
	})

	t.Run("existing output with force", func(t *testing.T) {
		_, err := execute(t, "remix", bundlePath, title, chapter,
			"--endpoint", server.URL, "--style", "book.css", "-o", existing, "--force")
		require.NoError(t, err)

		data, readErr := os.ReadFile(existing)
		require.NoError(t, readErr)
		assert.Equal(t, "%PDF-1.4 patched", string(data))
	})

	t.Run("service rejects request", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown style sheet", http.StatusBadRequest)
		}))
		defer failing.Close()

		_, err := execute(t, "remix", bundlePath, title, chapter,
			"--endpoint", failing.URL, "--style", "book.css", "-o", filepath.Join(dir, "b.pdf"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown style sheet")
		assert.NoFileExists(t, filepath.Join(dir, "b.pdf"))
	})
}

func TestRemixCmd_Interactive(t *testing.T) {
	home := setupHome(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "interactive.pdf")

	orig := runStepper
	defer func() { runStepper = orig }()

	var got tui.StepperOptions
	runStepper = func(opts tui.StepperOptions) error {
		got = opts
		if _, err := opts.SaveResult(&remix.Result{FileName: "patched.pdf", Data: pdfContent}, opts.Config); err != nil {
			return err
		}
		cfg := *opts.Config
		cfg.Remix.Endpoint = "https://remix.example.com/patch"
		return opts.SaveConfig(&cfg)
	}

	_, err := execute(t, "remix", "-o", outPath, "--accessible")
	require.NoError(t, err)

	require.NotNil(t, got.Session)
	require.NotNil(t, got.Context)
	assert.True(t, got.Accessible)
	assert.Equal(t, outPath, got.Config.Output.File)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, pdfContent, data)

	saved, err := os.ReadFile(filepath.Join(home, ".pdfremix", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "https://remix.example.com/patch")

	t.Run("existing output needs force", func(t *testing.T) {
		runStepper = func(opts tui.StepperOptions) error {
			_, err := opts.SaveResult(&remix.Result{FileName: "patched.pdf", Data: []byte("new")}, opts.Config)
			return err
		}

		_, err := execute(t, "remix", "-o", outPath)
		require.Error(t, err)

		_, err = execute(t, "remix", "-o", outPath, "--force")
		require.NoError(t, err)
		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestInspectCmd(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()
	bundlePath := writeBundle(t, dir, "http://example.com")

	t.Run("bundle only", func(t *testing.T) {
		out, err := execute(t, "inspect", bundlePath)
		require.NoError(t, err)

		assert.Contains(t, out, "Sources (2):")
		assert.Contains(t, out, "title_pages.pdf")
		assert.Contains(t, out, "http://example.com/chapter_1.pdf")
		assert.Contains(t, out, "Styles (2):")
		assert.Contains(t, out, "book.css")
		assert.NotContains(t, out, "missing")
	})

	t.Run("with files", func(t *testing.T) {
		title := writePDF(t, dir, "title_pages.pdf")
		extra := writePDF(t, dir, "appendix.pdf")

		out, err := execute(t, "inspect", bundlePath, title, extra)
		require.NoError(t, err)

		assert.Contains(t, out, "title_pages.pdf  present")
		assert.Contains(t, out, "chapter_1.pdf  missing")
		assert.Contains(t, out, "Not required:")
		assert.Contains(t, out, "appendix.pdf")
		assert.Contains(t, out, "1 required file(s) missing")
	})

	t.Run("invalid bundle", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.zip")
		require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0644))

		_, err := execute(t, "inspect", bad)
		assert.Error(t, err)
	})
}

func TestFetchCmd(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/title_pages.pdf", "/chapter_1.pdf":
			_, _ = w.Write(pdfContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	bundlePath := writeBundle(t, dir, server.URL)
	target := filepath.Join(dir, "sources")

	out, err := execute(t, "fetch", bundlePath, "--dir", target, "--no-cache")
	require.NoError(t, err)

	for _, name := range []string{"title_pages.pdf", "chapter_1.pdf"} {
		p := filepath.Join(target, name)
		assert.Contains(t, out, "Saved "+p)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, pdfContent, data)
	}
}

func TestConfigCmd(t *testing.T) {
	home := setupHome(t)

	orig := runTUI
	defer func() { runTUI = orig }()

	var got tui.Options
	runTUI = func(opts tui.Options) error {
		got = opts
		cfg := *opts.Config
		cfg.Remix.Endpoint = "https://remix.example.com/patch"
		return opts.SaveFunc(&cfg)
	}

	_, err := execute(t, "config", "--accessible")
	require.NoError(t, err)
	assert.True(t, got.Accessible)
	require.NotNil(t, got.Config)

	saved := filepath.Join(home, ".pdfremix", "config.yaml")
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://remix.example.com/patch")

	// the saved file is picked up by the next invocation
	runTUI = func(opts tui.Options) error {
		got = opts
		return nil
	}
	_, err = execute(t, "config")
	require.NoError(t, err)
	assert.Equal(t, "https://remix.example.com/patch", got.Config.Remix.Endpoint)
}

func TestConfigCmd_ExplicitFile(t *testing.T) {
	setupHome(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, config.Save(config.Default(), path))

	orig := runTUI
	defer func() { runTUI = orig }()
	runTUI = func(opts tui.Options) error {
		cfg := *opts.Config
		cfg.Output.File = "remixed.pdf"
		return opts.SaveFunc(&cfg)
	}

	_, err := execute(t, "config", "--config", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "remixed.pdf")
}

func TestDoctorCmd(t *testing.T) {
	setupHome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	out, err := execute(t, "doctor", "--endpoint", server.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "Config: OK (defaults)")
	assert.Contains(t, out, "Remix service ("+server.URL+"): OK")
	assert.Contains(t, out, "Cache directory: WARN")
}

func TestDoctorCmd_Unreachable(t *testing.T) {
	setupHome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out, err := execute(t, "doctor", "--endpoint", url)
	require.NoError(t, err)
	assert.Contains(t, out, "UNREACHABLE")
	assert.Contains(t, out, "Some checks failed")
}

func TestCheckEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected bool
	}{
		{name: "ok", status: http.StatusOK, expected: true},
		{name: "method not allowed", status: http.StatusMethodNotAllowed, expected: true},
		{name: "not found", status: http.StatusNotFound, expected: true},
		{name: "server error", status: http.StatusInternalServerError, expected: false},
		{name: "bad gateway", status: http.StatusBadGateway, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			assert.Equal(t, tt.expected, checkEndpoint(t.Context(), server.URL))
		})
	}

	t.Run("invalid url", func(t *testing.T) {
		assert.False(t, checkEndpoint(t.Context(), "://bad"))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		assert.False(t, checkEndpoint(t.Context(), url))
	})
}

func TestCheckWritePermissions(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, checkWritePermissions(dir))
	assert.False(t, checkWritePermissions(filepath.Join(dir, "missing", "nested")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckCacheDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, checkCacheDir(dir))
	assert.False(t, checkCacheDir(file))
	assert.False(t, checkCacheDir(filepath.Join(dir, "missing")))

	orig := osStat
	defer func() { osStat = orig }()
	osStat = func(string) (os.FileInfo, error) { return nil, os.ErrPermission }
	assert.False(t, checkCacheDir(dir))
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pdfremix"))
}
