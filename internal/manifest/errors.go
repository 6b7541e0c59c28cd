package manifest

import (
	"errors"
	"fmt"
)

// Sentinel errors for the manifest package
var (
	// ErrNotObject indicates the top-level document is not a mapping
	ErrNotObject = errors.New("manifest is not an object")

	// ErrMissingSources indicates the sources key is absent or not a list
	ErrMissingSources = errors.New("manifest is missing sources key")

	// ErrMissingStyles indicates the styles key is absent or not a list
	ErrMissingStyles = errors.New("manifest is missing style key")

	// ErrNotString indicates a required field is missing or not a string
	ErrNotString = errors.New("is not a string")

	// ErrInvalidFormat indicates the manifest text is not valid YAML
	ErrInvalidFormat = errors.New("manifest must be valid YAML")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnknownStyle indicates a style sheet is not listed in the manifest
	ErrUnknownStyle = errors.New("is not a style sheet in the bundle")
)

// NotStringError reports the value found where a string was required.
type NotStringError struct {
	Value any
}

func (e *NotStringError) Error() string {
	return fmt.Sprintf("%v %s", e.Value, ErrNotString.Error())
}

func (e *NotStringError) Is(target error) bool {
	return target == ErrNotString
}

// FieldError locates a failure inside one source or style entry.
// Context is the entry's file name or style name when already known, or the
// serialized raw entry when the identifying field itself failed.
type FieldError struct {
	Context string
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Context, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnknownStyleError is returned when a style sheet is not in the manifest.
type UnknownStyleError struct {
	StyleSheet string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("%s %s", e.StyleSheet, ErrUnknownStyle.Error())
}

func (e *UnknownStyleError) Is(target error) bool {
	return target == ErrUnknownStyle
}
