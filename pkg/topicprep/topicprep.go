package topicprep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cognicore/topicprep/pkg/topicprep/freq"
	"github.com/cognicore/topicprep/pkg/topicprep/ingest"
	"github.com/cognicore/topicprep/pkg/topicprep/output"
	"github.com/cognicore/topicprep/pkg/topicprep/pool"
	"github.com/cognicore/topicprep/pkg/topicprep/source"
	"github.com/cognicore/topicprep/pkg/topicprep/stoplist"
	"github.com/cognicore/topicprep/pkg/topicprep/store"
)

// Preparer turns a document source into a frequency-filtered corpus.
type Preparer struct {
	src       source.Source
	tokenizer *ingest.Tokenizer
	stops     *stoplist.Set
	threshold int64
	pool      *pool.Pool
	store     store.Store
	label     string
	logger    *slog.Logger
	now       func() time.Time
	ids       *runIDs
}

// Options configures a Preparer
type Options struct {
	Source    source.Source
	Tokenizer *ingest.Tokenizer // nil: generic stopwords, default punctuation
	Stoplist  *stoplist.Set     // applied by the filter; nil means none
	// Threshold is the corpus-wide count a token must exceed to be kept.
	// Zero keeps every token that occurs; callers wanting the configured
	// default pass config.DefaultThreshold.
	Threshold int64
	Workers   int         // pool.AllUnits or <= 0 uses every hardware unit
	Store     store.Store // optional run ledger
	Label     string      // input description recorded in the ledger
	Logger    *slog.Logger
	Now       func() time.Time
}

// New creates a Preparer with the given dependencies
func New(opts Options) *Preparer {
	p := &Preparer{
		src:       opts.Source,
		tokenizer: opts.Tokenizer,
		stops:     opts.Stoplist,
		threshold: opts.Threshold,
		pool:      pool.New(opts.Workers),
		store:     opts.Store,
		label:     opts.Label,
		logger:    opts.Logger,
		now:       opts.Now,
		ids:       newRunIDs(),
	}
	if p.tokenizer == nil {
		p.tokenizer = ingest.NewTokenizer(ingest.TokenizerOptions{})
	}
	if p.stops == nil {
		p.stops = stoplist.Empty()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Stats summarizes one pipeline pass.
type Stats struct {
	Docs      int
	BytesRead int64
	TokensIn  int64
	TokensOut int64
	VocabSize int
}

// Result is the outcome of Prepare.
type Result struct {
	RunID  string // set by Run
	Corpus Corpus
	Global *freq.Global
	Docs   []store.DocSummary // in listing order
	Stats  Stats
}

type tokenized struct {
	tokens []string
	local  freq.Local
	bytes  int64
}

// Prepare runs both phases and returns the filtered corpus. Any document
// failure fails the whole batch and no partial result is returned.
func (p *Preparer) Prepare(ctx context.Context) (*Result, error) {
	ids, err := p.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// Phase 1: read, tokenize and count each document independently.
	p.logger.Info("Starting tokenize phase", "doc_count", len(ids), "workers", p.pool.Workers())
	docs, err := pool.Map(ctx, p.pool, ids, func(ctx context.Context, _ int, id string) (tokenized, error) {
		doc, err := ingest.ReadDocument(ctx, p.src, id)
		if err != nil {
			return tokenized{}, err
		}
		tokens, local := p.tokenizer.Tokenize(doc.Text)
		return tokenized{tokens: tokens, local: local, bytes: int64(len(doc.Text))}, nil
	})
	if err != nil {
		p.logger.Error("Tokenize phase failed", "error", err)
		return nil, err
	}

	// Barrier: pool.Map has returned, so every local map is final.
	locals := make([]freq.Local, len(docs))
	var stats Stats
	for i, d := range docs {
		locals[i] = d.local
		stats.BytesRead += d.bytes
		stats.TokensIn += int64(len(d.tokens))
	}
	global := freq.Merge(locals)
	stats.Docs = len(docs)
	stats.VocabSize = global.Len()
	p.logger.Info("Aggregated corpus frequencies",
		"bytes_read", humanize.Bytes(uint64(stats.BytesRead)),
		"tokens", stats.TokensIn,
		"vocab_size", stats.VocabSize)

	// Phase 2: filter every document against the finished global map.
	p.logger.Info("Starting filter phase", "threshold", p.threshold)
	filtered, err := pool.Map(ctx, p.pool, docs, func(_ context.Context, _ int, d tokenized) ([]string, error) {
		return freq.Filter(d.tokens, global, p.threshold, p.stops), nil
	})
	if err != nil {
		p.logger.Error("Filter phase failed", "error", err)
		return nil, err
	}

	corpus, err := Assemble(ids, filtered)
	if err != nil {
		return nil, err
	}

	summaries := make([]store.DocSummary, len(ids))
	for i, id := range ids {
		summaries[i] = store.DocSummary{ID: id, TokensIn: len(docs[i].tokens), TokensOut: len(filtered[i])}
		stats.TokensOut += int64(len(filtered[i]))
	}
	p.logger.Info("Corpus prepared", "docs", stats.Docs, "tokens_kept", stats.TokensOut, "tokens_dropped", stats.TokensIn-stats.TokensOut)

	return &Result{
		Corpus: corpus,
		Global: global,
		Docs:   summaries,
		Stats:  stats,
	}, nil
}

// Run prepares the corpus, writes it to outDir and records the run in the
// ledger when one is configured.
func (p *Preparer) Run(ctx context.Context, outDir string) (*Result, error) {
	started := p.now()

	res, err := p.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	if err := output.Write(ctx, outDir, res.Corpus, p.pool); err != nil {
		return nil, fmt.Errorf("write corpus: %w", err)
	}
	p.logger.Info("Wrote corpus", "dir", outDir, "files", len(res.Corpus))

	res.RunID = p.ids.next(started)
	if p.store == nil {
		return res, nil
	}

	run := store.Run{
		ID:         res.RunID,
		StartedAt:  started,
		FinishedAt: p.now(),
		Input:      p.label,
		Output:     outDir,
		Threshold:  p.threshold,
		Workers:    p.pool.Workers(),
		Docs:       res.Stats.Docs,
		VocabSize:  res.Stats.VocabSize,
		TokensIn:   res.Stats.TokensIn,
		TokensOut:  res.Stats.TokensOut,
	}
	top := res.Global.Top(0)
	vocab := make([]store.TokenCount, len(top))
	for i, tc := range top {
		vocab[i] = store.TokenCount{Token: tc.Token, Count: tc.Count}
	}
	if err := p.store.RecordRun(ctx, run, vocab, res.Docs); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	p.logger.Info("Recorded run", "run_id", run.ID)

	return res, nil
}
