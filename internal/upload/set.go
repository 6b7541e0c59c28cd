package upload

import (
	"errors"

	"github.com/quantmind-br/pdfremix/internal/manifest"
)

type entry struct {
	source manifest.Source
	file   *File
}

// Set tracks which required source files have been supplied.
//
// Its keys are fixed at construction. Bind files with AddFile on a Clone
// and replace the old value, so earlier values stay unchanged.
type Set struct {
	names   []string
	entries map[string]*entry
}

// NewSet builds a Set keyed by each source's FileName, in source order.
// A repeated file name keeps its first position and last source.
func NewSet(sources []manifest.Source) *Set {
	s := &Set{
		names:   make([]string, 0, len(sources)),
		entries: make(map[string]*entry, len(sources)),
	}
	for _, src := range sources {
		if e, ok := s.entries[src.FileName]; ok {
			e.source = src
			continue
		}
		s.names = append(s.names, src.FileName)
		s.entries[src.FileName] = &entry{source: src}
	}
	return s
}

// Clone returns an independent copy. Sources and bound files are shared by
// reference; binding a file on the copy never affects the original.
func (s *Set) Clone() *Set {
	c := &Set{
		names:   append([]string(nil), s.names...),
		entries: make(map[string]*entry, len(s.entries)),
	}
	for name, e := range s.entries {
		c.entries[name] = &entry{source: e.source, file: e.file}
	}
	return c
}

// Len returns the number of required files
func (s *Set) Len() int {
	return len(s.names)
}

// FileNames returns all required file names in key order
func (s *Set) FileNames() []string {
	return append([]string(nil), s.names...)
}

// Source returns the manifest source registered under name
func (s *Set) Source(name string) (manifest.Source, error) {
	e, ok := s.entries[name]
	if !ok {
		return manifest.Source{}, &NameError{Name: name, Err: ErrUnknownFile}
	}
	return e.source, nil
}

// AddFile binds file to the required source with the same name.
// A file already bound under that name is replaced.
func (s *Set) AddFile(file *File) error {
	if file == nil {
		return ErrNilFile
	}
	e, ok := s.entries[file.Name]
	if !ok {
		return &NameError{Name: file.Name, Err: ErrNotRequired}
	}
	e.file = file
	return nil
}

// WithFiles tries every file against a fresh clone. If any file fails, no
// file is committed and all failures are returned joined; otherwise the
// clone with every file bound is returned. The receiver is never modified.
func (s *Set) WithFiles(files ...*File) (*Set, error) {
	next := s.Clone()
	var errs []error
	for _, f := range files {
		if err := next.AddFile(f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return next, nil
}

// IsFilePresent reports whether a file is bound to name
func (s *Set) IsFilePresent(name string) (bool, error) {
	e, ok := s.entries[name]
	if !ok {
		return false, &NameError{Name: name, Err: ErrUnknownFile}
	}
	return e.file != nil, nil
}

// AreAllFilesPresent reports whether every required file is bound.
// An empty set is complete.
func (s *Set) AreAllFilesPresent() bool {
	for _, e := range s.entries {
		if e.file == nil {
			return false
		}
	}
	return true
}

// Missing returns the required names with no bound file, in key order
func (s *Set) Missing() []string {
	var missing []string
	for _, name := range s.names {
		if s.entries[name].file == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Files returns every bound file in key order. It fails on the first
// unbound name instead of omitting it.
func (s *Set) Files() ([]*File, error) {
	files := make([]*File, 0, len(s.names))
	for _, name := range s.names {
		e := s.entries[name]
		if e.file == nil {
			return nil, &NameError{Name: name, Err: ErrMissingFile}
		}
		files = append(files, e.file)
	}
	return files, nil
}
