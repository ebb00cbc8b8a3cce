package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// muscleNames maps the built-in muscle-group ids to display names.
var muscleNames = map[string]string{
	"chest":     "Chest",
	"back":      "Back",
	"legs":      "Legs",
	"shoulders": "Shoulders",
	"arms":      "Arms",
	"core":      "Core",
}

// Exercises is the exercise catalog.
type Exercises struct {
	mu    sync.Mutex
	snaps *storage.Snapshots
}

func NewExercises(snaps *storage.Snapshots) *Exercises {
	return &Exercises{snaps: snaps}
}

func (c *Exercises) List(ctx context.Context) ([]models.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.snaps.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.CatalogEntry{}
	}
	return list, nil
}

func (c *Exercises) Get(ctx context.Context, id string) (models.CatalogEntry, error) {
	list, err := c.List(ctx)
	if err != nil {
		return models.CatalogEntry{}, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, nil
		}
	}
	return models.CatalogEntry{}, apperr.NotFound("get exercise", "exercise %q does not exist", id)
}

// Replace swaps the whole catalog after checking ids are present and unique.
func (c *Exercises) Replace(ctx context.Context, entries []models.CatalogEntry) error {
	const op = "replace exercises"
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
			return apperr.Validation(op, "entry %d: id and name are required", i)
		}
		if seen[e.ID] {
			return apperr.Validation(op, "duplicate exercise id %q", e.ID)
		}
		if e.Unit != "" && !e.Unit.IsValid() {
			return apperr.Validation(op, "entry %d: unknown unit %q", i, e.Unit)
		}
		seen[e.ID] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps.SaveExercises(ctx, entries)
}

// NameFor returns the display name of a muscle group, or the id itself when unknown.
func (c *Exercises) NameFor(muscleID string) string {
	return MuscleName(muscleID)
}

func MuscleName(muscleID string) string {
	if n, ok := muscleNames[muscleID]; ok {
		return n
	}
	return muscleID
}
