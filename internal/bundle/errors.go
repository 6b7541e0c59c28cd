package bundle

import "errors"

// Archive errors are reported with short fixed messages; the user picks a
// different bundle.
var (
	// ErrInvalidArchive indicates the bundle is not a readable zip archive
	ErrInvalidArchive = errors.New("bundle is not a valid zip archive")

	// ErrMissingManifest indicates the archive has no manifest.yml entry
	ErrMissingManifest = errors.New("bundle does not contain manifest.yml")

	// ErrInvalidManifest indicates manifest.yml is not decodable YAML
	ErrInvalidManifest = errors.New("bundle manifest.yml is not valid YAML")
)
