// Package history keeps a small auxiliary ledger of build runs — when
// each one started, how it ended, and what it produced — in a SQLite
// database separate from the index's own KV stores. It is never
// consulted to answer a query; losing it costs operational history, not
// search correctness.
package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// Ledger records build runs to a SQLite database.
type Ledger struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens (creating if necessary) the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, corpuserr.IO("open history database", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, corpuserr.IO("enable WAL mode", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL,
	total_docs INTEGER DEFAULT 0,
	total_terms INTEGER DEFAULT 0,
	error TEXT
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return corpuserr.IO("initialize history schema", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return corpuserr.IO("close history database", err)
	}
	return nil
}

// Started records the start of a new build run and returns its run ID.
func (l *Ledger) Started(ctx context.Context, at time.Time) (string, error) {
	id := ulid.MustNew(ulid.Timestamp(at), l.entropy).String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running')`,
		id, at.Format(time.RFC3339Nano))
	if err != nil {
		return "", corpuserr.IO("record run start", err)
	}
	return id, nil
}

// Finished records a successful run's completion and totals.
func (l *Ledger) Finished(ctx context.Context, runID string, at time.Time, totalDocs, totalTerms int) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = 'done', finished_at = ?, total_docs = ?, total_terms = ? WHERE id = ?`,
		at.Format(time.RFC3339Nano), totalDocs, totalTerms, runID)
	if err != nil {
		return corpuserr.IO("record run completion", err)
	}
	return nil
}

// Failed records a run's abort with the error that caused it.
func (l *Ledger) Failed(ctx context.Context, runID string, at time.Time, cause error) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', finished_at = ?, error = ? WHERE id = ?`,
		at.Format(time.RFC3339Nano), cause.Error(), runID)
	if err != nil {
		return corpuserr.IO("record run failure", err)
	}
	return nil
}

// Run is one row of the build-run ledger.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	TotalDocs  int
	TotalTerms int
	Error      string
}

// Recent returns the last n runs, most recent first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, total_docs, total_terms, error
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, corpuserr.IO("query recent runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			finishedAt sql.NullString
			errText    sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedAt, &finishedAt, &r.Status, &r.TotalDocs, &r.TotalTerms, &errText); err != nil {
			return nil, corpuserr.IO("scan run row", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, finishedAt.String)
			r.FinishedAt = &t
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, corpuserr.IO("iterate run rows", err)
	}
	return runs, nil
}
