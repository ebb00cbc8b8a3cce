// Package importer walks a directory of Alpha Progression CSV exports and
// feeds each new file to a Sink, locally or over HTTP.
package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
)

// Sink merges one export into history.
type Sink interface {
	Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// File identifies one export by its slash-separated path under the import
// directory, its size and the hex SHA-256 of its content.
type File struct {
	Path   string
	Size   int64
	SHA256 string
}

// Ledger remembers files that were already imported. Implementations match on
// path, size and hash so an edited export is imported again.
type Ledger interface {
	IsImported(ctx context.Context, f File) (bool, error)
	MarkImported(ctx context.Context, f File, r *ingest.Result) error
}

// Stats tracks import progress.
type Stats struct {
	FilesTotal    int
	FilesImported int
	FilesSkipped  int
	FilesErrored  int

	SessionsReceived int
	SessionsAdded    int
	SessionsReplaced int
	SetsReceived     int
}

func (s *Stats) add(r *ingest.Result) {
	s.SessionsReceived += r.SessionsReceived
	s.SessionsAdded += r.SessionsAdded
	s.SessionsReplaced += r.SessionsReplaced
	s.SetsReceived += r.SetsReceived
}

type Importer struct {
	sink   Sink
	ledger Ledger
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates an Importer. ledger may be nil, in which case every file is
// sent. In dry-run mode files are parsed and counted but sink is never called.
func New(sink Sink, ledger Ledger, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{sink: sink, ledger: ledger, dryRun: dryRun, log: log}
}

// Import processes every .csv file under dir in lexical order. A file that
// fails to parse or ingest is counted and skipped; only ledger and context
// failures abort the run.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		return imp.importFile(ctx, path, filepath.ToSlash(rel))
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("importing %s: %w", dir, err)
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path, rel string) error {
	imp.stats.FilesTotal++

	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	sum := sha256.Sum256(data)
	file := File{Path: rel, Size: int64(len(data)), SHA256: hex.EncodeToString(sum[:])}

	if imp.ledger != nil {
		done, err := imp.ledger.IsImported(ctx, file)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", rel, err)
		}
		if done {
			imp.stats.FilesSkipped++
			return nil
		}
	}

	if imp.dryRun {
		workouts, err := alpha.Parse(bytes.NewReader(data))
		if err != nil {
			imp.log.Warn("parse failed", "file", rel, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		r := &ingest.Result{SessionsReceived: len(workouts)}
		for _, w := range workouts {
			for _, m := range w.Moves {
				r.SetsReceived += len(m.Sets)
			}
		}
		imp.stats.add(r)
		imp.stats.FilesImported++
		imp.log.Info("parsed", "file", rel, "sessions", r.SessionsReceived, "sets", r.SetsReceived)
		return nil
	}

	result, err := imp.sink.Ingest(ctx, bytes.NewReader(data))
	if err != nil {
		imp.log.Warn("import failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	imp.stats.add(result)
	imp.stats.FilesImported++
	imp.log.Info("imported", "file", rel, "added", result.SessionsAdded, "replaced", result.SessionsReplaced)

	if imp.ledger != nil {
		if err := imp.ledger.MarkImported(ctx, file, result); err != nil {
			return err
		}
	}
	return nil
}
