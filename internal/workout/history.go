package workout

import (
	"context"
	"slices"
	"sync"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// History is the append-only list of completed sessions.
type History struct {
	mu    sync.Mutex
	snaps *storage.Snapshots
}

func NewHistory(snaps *storage.Snapshots) *History {
	return &History{snaps: snaps}
}

func (h *History) List(ctx context.Context) ([]models.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list, err := h.snaps.History(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Session{}
	}
	return list, nil
}

// Append adds a finished session. A session whose id is already present replaces
// that entry. Nothing is written when the load fails.
func (h *History) Append(ctx context.Context, s models.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	list, err := h.snaps.History(ctx)
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(list, func(e models.Session) bool { return e.ID == s.ID }); i >= 0 {
		list[i] = s
	} else {
		list = append(list, s)
	}
	return h.snaps.SaveHistory(ctx, list)
}

// Contains reports whether a session with id has been recorded.
func (h *History) Contains(ctx context.Context, id string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list, err := h.snaps.History(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(list, func(e models.Session) bool { return e.ID == id }), nil
}

// Merge adds imported sessions. An imported session replaces an existing entry
// with the same template id and date; it reports how many entries were replaced.
func (h *History) Merge(ctx context.Context, sessions []models.Session) (added, replaced int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list, err := h.snaps.History(ctx)
	if err != nil {
		return 0, 0, err
	}
	index := make(map[[2]string]int, len(list))
	for i, s := range list {
		index[[2]string{s.TemplateID, s.Date}] = i
	}
	for _, s := range sessions {
		k := [2]string{s.TemplateID, s.Date}
		if i, ok := index[k]; ok {
			list[i] = s
			replaced++
			continue
		}
		index[k] = len(list)
		list = append(list, s)
		added++
	}
	if err := h.snaps.SaveHistory(ctx, list); err != nil {
		return 0, 0, err
	}
	return added, replaced, nil
}

// Replace overwrites the whole history. Used for corrective imports.
func (h *History) Replace(ctx context.Context, sessions []models.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snaps.SaveHistory(ctx, sessions)
}
