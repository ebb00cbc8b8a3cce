// Package catalog holds the persisted template and exercise catalogs that
// sessions are built from.
package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Templates is the ordered list of workout templates.
type Templates struct {
	mu    sync.Mutex
	snaps *storage.Snapshots
}

func NewTemplates(snaps *storage.Snapshots) *Templates {
	return &Templates{snaps: snaps}
}

func (c *Templates) List(ctx context.Context) ([]models.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.snaps.Templates(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Template{}
	}
	return list, nil
}

// Get returns the template with id, or a NotFound error.
func (c *Templates) Get(ctx context.Context, id string) (models.Template, error) {
	list, err := c.List(ctx)
	if err != nil {
		return models.Template{}, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Template{}, apperr.NotFound("get template", "template %q does not exist", id)
}

// Save validates t and replaces the template with the same id, or appends it.
func (c *Templates) Save(ctx context.Context, t models.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.snaps.Templates(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(x models.Template) bool { return x.ID == t.ID })
	if i >= 0 {
		list[i] = t
	} else {
		list = append(list, t)
	}
	return c.snaps.SaveTemplates(ctx, list)
}

func (c *Templates) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.snaps.Templates(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(x models.Template) bool { return x.ID == id })
	if i < 0 {
		return apperr.NotFound("delete template", "template %q does not exist", id)
	}
	return c.snaps.SaveTemplates(ctx, slices.Delete(list, i, i+1))
}
