package importer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/ingest"
)

const ledgerSchema = `CREATE TABLE IF NOT EXISTS ledger (
	target      TEXT NOT NULL,
	path        TEXT NOT NULL,
	size        INTEGER NOT NULL,
	sha256      TEXT NOT NULL,
	sessions    INTEGER NOT NULL DEFAULT 0,
	sets        INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (target, path)
)`

// StateDB is a Ledger in dir/state.db. Records are kept per target, the
// server URL an export went to, so the same directory can feed several servers.
type StateDB struct {
	db     *sql.DB
	target string
}

var _ Ledger = (*StateDB)(nil)

// Totals summarises what a target has received so far.
type Totals struct {
	Files    int
	Sessions int
	Sets     int
}

func OpenStateDB(dir, target string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger table: %w", err)
	}
	return &StateDB{db: db, target: target}, nil
}

func (s *StateDB) IsImported(ctx context.Context, f File) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger WHERE target = ? AND path = ? AND size = ? AND sha256 = ?`,
		s.target, f.Path, f.Size, f.SHA256,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return n > 0, nil
}

// MarkImported records f with the counts the sink reported. A file that was
// recorded before is overwritten, since its content changed.
func (s *StateDB) MarkImported(ctx context.Context, f File, r *ingest.Result) error {
	var sessions, sets int
	if r != nil {
		sessions, sets = r.SessionsReceived, r.SetsReceived
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger (target, path, size, sha256, sessions, sets) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (target, path) DO UPDATE SET
			size = excluded.size, sha256 = excluded.sha256,
			sessions = excluded.sessions, sets = excluded.sets,
			recorded_at = CURRENT_TIMESTAMP`,
		s.target, f.Path, f.Size, f.SHA256, sessions, sets,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", f.Path, err)
	}
	return nil
}

func (s *StateDB) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(sessions), 0), COALESCE(SUM(sets), 0) FROM ledger WHERE target = ?`,
		s.target,
	).Scan(&t.Files, &t.Sessions, &t.Sets)
	if err != nil {
		return Totals{}, fmt.Errorf("summing ledger: %w", err)
	}
	return t, nil
}

func (s *StateDB) Close() error {
	return s.db.Close()
}
