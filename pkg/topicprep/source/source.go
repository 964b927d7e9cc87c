// Package source enumerates and opens raw documents.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/yargevad/filepathx"
)

// DefaultExtension selects plain-text documents.
const DefaultExtension = ".txt"

// Source lists document identifiers and opens them for reading.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// Dir reads one document per file from a local directory. Identifiers are
// file paths.
type Dir struct {
	Path      string
	Extension string // defaults to DefaultExtension
	Recursive bool   // also descend into subdirectories
}

// List returns the matching file paths in sorted order.
func (d Dir) List(ctx context.Context) ([]string, error) {
	info, err := os.Stat(d.Path)
	if err != nil {
		return nil, fmt.Errorf("input dir %s: %w", d.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input dir %s: not a directory", d.Path)
	}

	pattern := filepath.Join(d.Path, "*"+d.extension())
	if d.Recursive {
		pattern = filepath.Join(d.Path, "**", "*"+d.extension())
	}

	paths, err := filepathx.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	files := paths[:0]
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if fi.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Open opens the file at id.
func (d Dir) Open(_ context.Context, id string) (io.ReadCloser, error) {
	return os.Open(id)
}

func (d Dir) extension() string {
	if d.Extension == "" {
		return DefaultExtension
	}
	return d.Extension
}
