package bundle

import (
	"bytes"
	"io"
	"path"

	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

// Archive is a decoded zip bundle held in memory
type Archive struct {
	entries map[string]*zip.File
	logger  *utils.Logger
}

// OpenArchive decodes zip bytes. Any decoding failure is reported as
// ErrInvalidArchive.
func OpenArchive(data []byte) (*Archive, error) {
	return openArchive(data, utils.NewNopLogger())
}

func openArchive(data []byte, logger *utils.Logger) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Debug().Err(err).Msg("Zip decode failed")
		return nil, ErrInvalidArchive
	}

	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries[path.Clean(f.Name)] = f
	}
	return &Archive{entries: entries, logger: logger}, nil
}

// ReadEntry returns the content of the named entry. The bool is false when
// the entry does not exist.
func (a *Archive) ReadEntry(name string) ([]byte, bool, error) {
	f, ok := a.entries[path.Clean(name)]
	if !ok {
		return nil, false, nil
	}

	rc, err := f.Open()
	if err != nil {
		a.logger.Debug().Err(err).Str("entry", name).Msg("Zip entry open failed")
		return nil, true, ErrInvalidArchive
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		a.logger.Debug().Err(err).Str("entry", name).Msg("Zip entry read failed")
		return nil, true, ErrInvalidArchive
	}
	return data, true, nil
}

// Names returns every file entry name
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	return names
}
