package bundle

import (
	"errors"

	"github.com/quantmind-br/pdfremix/internal/manifest"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

// Bundle is a remix bundle together with its validated manifest. File is
// submitted unchanged to the remote patch service.
type Bundle struct {
	File     *upload.File
	Manifest *manifest.Manifest
}

// Reader opens bundles, logging the underlying cause of archive and YAML
// failures at debug level
type Reader struct {
	logger *utils.Logger
}

// NewReader creates a bundle reader. A nil logger discards output.
func NewReader(logger *utils.Logger) *Reader {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Reader{logger: logger.WithComponent("bundle")}
}

// Open decodes a bundle file with a silent Reader
func Open(file *upload.File) (*Bundle, error) {
	return NewReader(nil).Open(file)
}

// Load reads a bundle from disk with a silent Reader
func Load(path string) (*Bundle, error) {
	return NewReader(nil).Load(path)
}

// Open decodes a bundle file and validates its manifest.yml.
//
// Archive and YAML failures return the package's fixed errors; structural
// manifest errors are returned verbatim so authors can locate them.
func (r *Reader) Open(file *upload.File) (*Bundle, error) {
	logger := r.logger.WithFile(file.Name)

	archive, err := openArchive(file.Data, logger)
	if err != nil {
		return nil, err
	}

	data, ok, err := archive.ReadEntry(manifest.FileName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingManifest
	}

	doc, err := manifest.Decode(data)
	if err != nil {
		if errors.Is(err, manifest.ErrInvalidFormat) {
			logger.Debug().Err(err).Msg("Manifest decode failed")
			return nil, ErrInvalidManifest
		}
		return nil, err
	}

	m, err := manifest.Parse(doc)
	if err != nil {
		return nil, err
	}

	return &Bundle{File: file, Manifest: m}, nil
}

// Load reads a bundle from disk and opens it
func (r *Reader) Load(path string) (*Bundle, error) {
	file, err := upload.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Open(file)
}
