package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/stretchr/testify/require"
)

const testManifest = `
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

// md5 of pdfContent
const pdfMD5 = "662d150c1c021efdffc61004e797114b"

var pdfContent = []byte("%PDF-1.4 test")

func bundleData(t *testing.T, baseURL, md5sum string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("manifest.yml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, testManifest, baseURL, md5sum)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testBundle(t *testing.T) *upload.File {
	t.Helper()
	return upload.NewFile("bundle.zip", bundleData(t, "http://example.com", pdfMD5))
}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

// fakeSubmitter records requests and returns a canned outcome
type fakeSubmitter struct {
	mu       sync.Mutex
	requests []remix.Request
	result   *remix.Result
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, req remix.Request) (*remix.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSubmitter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func okResult() *remix.Result {
	return &remix.Result{FileName: "patched.pdf", ContentType: "application/pdf", Data: []byte("%PDF-patched")}
}
