// Package output writes filtered corpora in the layout the topic-model
// trainer imports: one file per document, tokens joined by single spaces.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/topicprep/pkg/topicprep/pool"
)

// FileName maps a document identifier to its output file name.
func FileName(id string) string {
	return filepath.Base(filepath.FromSlash(id))
}

// Write creates dir and writes every document of corpus into it. Two
// identifiers sharing a base name would overwrite each other, so that case
// is rejected before anything is written. Once every document is written,
// regular files in dir that belong to no document of corpus are removed so a
// reused directory holds exactly this corpus. Subdirectories are left alone.
func Write(ctx context.Context, dir string, corpus map[string][]string, p *pool.Pool) error {
	ids := make([]string, 0, len(corpus))
	seen := make(map[string]string, len(corpus))
	for id := range corpus {
		name := FileName(id)
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("output name %q shared by %s and %s", name, prev, id)
		}
		seen[name] = id
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	_, err := pool.Map(ctx, p, ids, func(_ context.Context, _ int, id string) (struct{}, error) {
		path := filepath.Join(dir, FileName(id))
		content := strings.Join(corpus[id], " ")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return struct{}{}, fmt.Errorf("write %s: %w", path, err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}
	return prune(dir, seen)
}

// prune removes regular files in dir whose names are not in keep.
func prune(dir string, keep map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list output dir: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Read loads a directory written by Write back into a corpus keyed by file
// name. Empty files yield empty sequences.
func Read(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	corpus := make(map[string][]string, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		corpus[e.Name()] = strings.Fields(string(data))
	}
	return corpus, nil
}
