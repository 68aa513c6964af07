// Package source maps an origin path to UTF-8 text and a normalized
// absolute path, the entry point of the preprocessing pipeline.
package source

import (
	"io"
	"os"
	"path/filepath"

	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
)

// File is a read source file: its absolute path and its decoded text.
type File struct {
	Path string
	Text string
}

// Read opens path with shared-read access (os.Open already does not
// exclude concurrent writers on either POSIX or Windows) and returns
// its text alongside the normalized absolute path.
func Read(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &blcserr.FileNotFound{Path: path, Err: err}
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &File{Path: abs, Text: string(data)}, nil
}

// Exists reports whether path names an existing file that is not a
// directory. It does not check that the file is readable.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
