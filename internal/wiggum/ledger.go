package wiggum

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go driver, matches internal/board's choice
)

// ledgerSchema records one row per attempt so cycle detection survives a
// crashed/resumed Wiggum run, not just an in-memory hash set for one
// process lifetime (SPEC_FULL.md §4.7).
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS attempts (
    attempt_number INTEGER PRIMARY KEY,
    attempt_id     TEXT NOT NULL,
    branch         TEXT NOT NULL,
    diff_hash      TEXT NOT NULL,
    outcome        TEXT NOT NULL,
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Ledger is the durable attempt-hash history backing cycle detection.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the sqlite attempt ledger at path.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("wiggum: open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("wiggum: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("wiggum: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("wiggum: create schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// HashDiff computes the stable diff-hash spec.md §4.7 step 4 requires for
// cycle detection: a sha256 over the unified diff text.
func HashDiff(diff string) string {
	sum := sha256.Sum256([]byte(diff))
	return hex.EncodeToString(sum[:])
}

// SeenHash reports whether hash matches any previously recorded attempt's
// diff hash, implying the agent produced a byte-identical change again
// (spec.md §8 property 9).
func (l *Ledger) SeenHash(ctx context.Context, hash string) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempts WHERE diff_hash = ?", hash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("wiggum: query ledger: %w", err)
	}
	return count > 0, nil
}

// Record stores one attempt's outcome and diff hash.
func (l *Ledger) Record(ctx context.Context, a Attempt) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO attempts (attempt_number, attempt_id, branch, diff_hash, outcome) VALUES (?, ?, ?, ?, ?)",
		a.Number, a.ID, a.Branch, a.DiffHash, string(a.Outcome))
	if err != nil {
		return fmt.Errorf("wiggum: record attempt: %w", err)
	}
	return nil
}
