package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	input TEXT,
	output TEXT,
	threshold INTEGER NOT NULL,
	workers INTEGER NOT NULL,
	docs INTEGER NOT NULL,
	vocab_size INTEGER NOT NULL,
	tokens_in INTEGER NOT NULL,
	tokens_out INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_vocabulary (
	run_id TEXT NOT NULL,
	token TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, token),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_vocabulary_count ON run_vocabulary(run_id, count DESC);

CREATE TABLE IF NOT EXISTS run_documents (
	run_id TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	tokens_in INTEGER NOT NULL,
	tokens_out INTEGER NOT NULL,
	PRIMARY KEY(run_id, doc_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordRun writes a run, its vocabulary and document summaries in one
// transaction.
func (s *sqliteStore) RecordRun(ctx context.Context, run store.Run, vocab []store.TokenCount, docs []store.DocSummary) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run ID is required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO runs (id, started_at, finished_at, input, output, threshold, workers, docs, vocab_size, tokens_in, tokens_out)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = tx.ExecContext(
		ctx,
		stmt,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Input,
		run.Output,
		run.Threshold,
		run.Workers,
		run.Docs,
		run.VocabSize,
		run.TokensIn,
		run.TokensOut,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	if err := insertVocabulary(ctx, tx, run.ID, vocab); err != nil {
		return err
	}
	if err := insertDocuments(ctx, tx, run.ID, docs); err != nil {
		return err
	}

	return tx.Commit()
}

func insertVocabulary(ctx context.Context, tx *sql.Tx, runID string, vocab []store.TokenCount) error {
	if len(vocab) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_vocabulary (run_id, token, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tc := range vocab {
		if _, err := stmt.ExecContext(ctx, runID, tc.Token, tc.Count); err != nil {
			return err
		}
	}
	return nil
}

func insertDocuments(ctx context.Context, tx *sql.Tx, runID string, docs []store.DocSummary) error {
	if len(docs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_documents (run_id, doc_id, tokens_in, tokens_out) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, runID, d.ID, d.TokensIn, d.TokensOut); err != nil {
			return err
		}
	}
	return nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, started_at, finished_at, input, output, threshold, workers, docs, vocab_size, tokens_in, tokens_out`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var (
		run               store.Run
		started, finished string
		input, output     sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&started,
		&finished,
		&input,
		&output,
		&run.Threshold,
		&run.Workers,
		&run.Docs,
		&run.VocabSize,
		&run.TokensIn,
		&run.TokensOut,
	)
	if err != nil {
		return store.Run{}, err
	}
	run.Input = input.String
	run.Output = output.String
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return store.Run{}, fmt.Errorf("run %s started_at: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return store.Run{}, fmt.Errorf("run %s finished_at: %w", run.ID, err)
	}
	return run, nil
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Vocabulary returns the k most frequent tokens of a run
func (s *sqliteStore) Vocabulary(ctx context.Context, runID string, k int) ([]store.TokenCount, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT token, count
FROM run_vocabulary
WHERE run_id = ?
ORDER BY count DESC, token ASC
LIMIT ?;
`, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.TokenCount
	for rows.Next() {
		var tc store.TokenCount
		if err := rows.Scan(&tc.Token, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// Documents returns the per-document summaries of a run, ordered by ID
func (s *sqliteStore) Documents(ctx context.Context, runID string) ([]store.DocSummary, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT doc_id, tokens_in, tokens_out
FROM run_documents
WHERE run_id = ?
ORDER BY doc_id ASC;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.DocSummary
	for rows.Next() {
		var d store.DocSummary
		if err := rows.Scan(&d.ID, &d.TokensIn, &d.TokensOut); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *sqliteStore) requireRun(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return err
}
