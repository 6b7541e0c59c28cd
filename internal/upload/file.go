package upload

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a user-supplied file. Name is matched against required source
// file names; Path records where it was read from, if anywhere.
type File struct {
	Name string
	Path string
	Data []byte
}

// NewFile creates a File from in-memory content
func NewFile(name string, data []byte) *File {
	return &File{Name: name, Data: data}
}

// ReadFile loads a file from disk, naming it after the path's base name
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &File{
		Name: filepath.Base(path),
		Path: path,
		Data: data,
	}, nil
}

// Reader returns a fresh reader over the file content
func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Size returns the content length in bytes
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// MD5 returns the lowercase hex MD5 digest of the content
func (f *File) MD5() string {
	sum := md5.Sum(f.Data)
	return hex.EncodeToString(sum[:])
}
