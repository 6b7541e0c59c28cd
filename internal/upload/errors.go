package upload

import (
	"errors"
	"fmt"
)

// Sentinel errors for the upload package
var (
	// ErrNotRequired indicates a supplied file matches no required source
	ErrNotRequired = errors.New("is not one of the required source PDF files")

	// ErrMissingFile indicates a required source has no file bound yet
	ErrMissingFile = errors.New("required file is missing")

	// ErrUnknownFile indicates a lookup by a name that is not a required source
	ErrUnknownFile = errors.New("is not a required file")

	// ErrNilFile indicates a nil file was supplied
	ErrNilFile = errors.New("file is nil")
)

// NameError ties an upload error to the file name it concerns.
type NameError struct {
	Name string
	Err  error
}

func (e *NameError) Error() string {
	if errors.Is(e.Err, ErrMissingFile) {
		return fmt.Sprintf("required file %s is missing", e.Name)
	}
	return fmt.Sprintf("%s %v", e.Name, e.Err)
}

func (e *NameError) Unwrap() error {
	return e.Err
}
