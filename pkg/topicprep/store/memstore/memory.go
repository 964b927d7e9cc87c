package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]store.Run
	vocab map[string][]store.TokenCount
	docs  map[string][]store.DocSummary
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:  make(map[string]store.Run),
		vocab: make(map[string][]store.TokenCount),
		docs:  make(map[string][]store.DocSummary),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// RecordRun stores a run; recording the same ID twice is an error.
func (s *Store) RecordRun(ctx context.Context, run store.Run, vocab []store.TokenCount, docs []store.DocSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("%w: run ID is required", internalerr.ErrInvalidInput)
	}
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already recorded", run.ID)
	}

	s.runs[run.ID] = run
	s.vocab[run.ID] = sortVocab(append([]store.TokenCount(nil), vocab...))

	d := append([]store.DocSummary(nil), docs...)
	sort.Slice(d, func(i, j int) bool { return d[i].ID < d[j].ID })
	s.docs[run.ID] = d
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Vocabulary returns the top-k tokens of a run.
func (s *Store) Vocabulary(ctx context.Context, runID string, k int) ([]store.TokenCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vocab[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	if k > 0 && len(v) > k {
		v = v[:k]
	}
	return append([]store.TokenCount(nil), v...), nil
}

// Documents returns the per-document summaries of a run, ordered by ID.
func (s *Store) Documents(ctx context.Context, runID string) ([]store.DocSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return append([]store.DocSummary(nil), d...), nil
}

func sortVocab(v []store.TokenCount) []store.TokenCount {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Count != v[j].Count {
			return v[i].Count > v[j].Count
		}
		return v[i].Token < v[j].Token
	})
	return v
}
