package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/report"
)

// DataSource abstracts the data layer for MCP tools. Both *report.Reporter
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Overview(ctx context.Context) (*report.Overview, error)
	Volume(ctx context.Context, weeksAhead int) (*report.VolumeReport, error)
	Exercise(ctx context.Context, exerciseID string, weeksAhead int) (*report.ExerciseReport, error)
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)
	CurrentWorkout(ctx context.Context) (*models.Session, error)
}

var _ DataSource = (*report.Reporter)(nil)
