package store

import (
	"context"
	"time"
)

// Store records finished pipeline runs: their parameters, the final
// vocabulary and a per-document summary. It is a ledger for inspection and
// is never read back to resume a run.
type Store interface {
	Close() error

	RecordRun(ctx context.Context, run Run, vocab []TokenCount, docs []DocSummary) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Vocabulary returns the k most frequent tokens of a run (all if k <= 0),
	// count descending then token ascending.
	Vocabulary(ctx context.Context, runID string, k int) ([]TokenCount, error)
	Documents(ctx context.Context, runID string) ([]DocSummary, error)
}

// Run describes one finished pipeline run
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Input      string
	Output     string
	Threshold  int64
	Workers    int
	Docs       int
	VocabSize  int
	TokensIn   int64 // tokens before filtering
	TokensOut  int64 // tokens after filtering
}

// TokenCount is a token with its corpus-wide frequency
type TokenCount struct {
	Token string
	Count int64
}

// DocSummary records how much of one document survived filtering
type DocSummary struct {
	ID        string
	TokensIn  int
	TokensOut int
}
