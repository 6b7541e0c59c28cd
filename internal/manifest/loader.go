package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest entry name inside a bundle archive
const FileName = "manifest.yml"

// Loader decodes manifest text and validates it
type Loader struct{}

// NewLoader creates a new manifest loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a manifest file from the given path
func (l *Loader) Load(path string) (*Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return l.LoadFromBytes(data)
}

// LoadFromBytes decodes YAML text into an untyped document and parses it
func (l *Loader) LoadFromBytes(data []byte) (*Manifest, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// Decode turns manifest text into an untyped document
func Decode(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return doc, nil
}
