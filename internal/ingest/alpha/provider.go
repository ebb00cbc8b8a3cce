package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
)

// Provider imports Alpha Progression CSV exports into history.
type Provider struct {
	history     *workout.History
	ids         ids.Generator
	metrics     *metrics.Manager
	log         *slog.Logger
	defaultRest string
}

// NewProvider creates a provider. m may be nil.
func NewProvider(history *workout.History, gen ids.Generator, m *metrics.Manager, log *slog.Logger) *Provider {
	return &Provider{history: history, ids: gen, metrics: m, log: log, defaultRest: models.DefaultRestTime}
}

// Ingest parses a CSV export and merges its sessions into history. Re-importing
// a session with the same name and date replaces the earlier copy.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	workouts, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(workouts)}
	if len(workouts) == 0 {
		result.Message = "no sessions found"
		return result, nil
	}

	sessions := make([]models.Session, 0, len(workouts))
	for _, w := range workouts {
		s := ToSession(w, p.ids, p.defaultRest)
		for _, ex := range s.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
		sessions = append(sessions, s)
	}

	added, replaced, err := p.history.Merge(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("merging history: %w", err)
	}
	result.SessionsAdded = added
	result.SessionsReplaced = replaced

	if p.metrics != nil {
		p.metrics.CounterImportedSessions.Add(float64(added))
	}
	p.log.Info("alpha import complete", "sessions", len(sessions), "added", added, "replaced", replaced, "sets", result.SetsReceived)
	return result, nil
}
