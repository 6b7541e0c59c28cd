package app

import (
	"bytes"
)

// InputType is the kind of file a user supplied
type InputType string

const (
	InputBundle  InputType = "bundle"
	InputPDF     InputType = "pdf"
	InputUnknown InputType = "unknown"
)

var (
	zipMagic      = []byte("PK\x03\x04")
	emptyZipMagic = []byte("PK\x05\x06")
	pdfMagic      = []byte("%PDF-")
)

// DetectInput classifies file content by its leading bytes
func DetectInput(data []byte) InputType {
	if bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, emptyZipMagic) {
		return InputBundle
	}
	// PDF readers accept the header anywhere in the first 1024 bytes
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, pdfMagic) {
		return InputPDF
	}
	return InputUnknown
}
