package remix

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEndpoint indicates the client was built without an endpoint
	ErrNoEndpoint = errors.New("remix endpoint is required")

	// ErrNoStyleSheet indicates a request without a style sheet
	ErrNoStyleSheet = errors.New("style sheet is required")

	// ErrNoBundle indicates a request without a bundle file
	ErrNoBundle = errors.New("bundle file is required")
)

// RemoteError carries the error text returned by the patch service
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remix failed with HTTP %d", e.StatusCode)
	}
	return e.Message
}
