package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
)

// Snapshots is the typed view over a Store. Every failure is an apperr Persistence error.
type Snapshots struct {
	store Store
}

func NewSnapshots(store Store) *Snapshots {
	return &Snapshots{store: store}
}

// Store returns the underlying key/value store.
func (s *Snapshots) Store() Store { return s.store }

func (s *Snapshots) Templates(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	if _, err := s.load(ctx, KeyTemplates, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Snapshots) SaveTemplates(ctx context.Context, templates []models.Template) error {
	return s.save(ctx, KeyTemplates, nonNil(templates))
}

func (s *Snapshots) Exercises(ctx context.Context) ([]models.CatalogEntry, error) {
	var out []models.CatalogEntry
	if _, err := s.load(ctx, KeyExercises, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Snapshots) SaveExercises(ctx context.Context, entries []models.CatalogEntry) error {
	return s.save(ctx, KeyExercises, nonNil(entries))
}

// History returns the completed sessions in the order they were appended.
func (s *Snapshots) History(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	if _, err := s.load(ctx, KeyWorkoutHistory, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Snapshots) SaveHistory(ctx context.Context, history []models.Session) error {
	return s.save(ctx, KeyWorkoutHistory, nonNil(history))
}

// CurrentWorkout returns the persisted active session, or nil when there is none.
func (s *Snapshots) CurrentWorkout(ctx context.Context) (*models.Session, error) {
	var out *models.Session
	if _, err := s.load(ctx, KeyCurrentWorkout, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCurrentWorkout writes the active session. A nil session is stored as JSON null.
//
// A session that cannot be encoded is corrupt in memory; the method panics before
// touching the store so the last good snapshot stays in place.
func (s *Snapshots) SaveCurrentWorkout(ctx context.Context, session *models.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		panic(fmt.Sprintf("liftlog: current workout cannot be encoded: %v", err))
	}
	if err := s.store.Save(ctx, KeyCurrentWorkout, raw); err != nil {
		return apperr.Persistence("save "+KeyCurrentWorkout, err)
	}
	return nil
}

// Settings returns the stored settings, falling back to the defaults when absent.
func (s *Snapshots) Settings(ctx context.Context) (models.Settings, error) {
	out := models.DefaultSettings()
	if _, err := s.load(ctx, KeySettings, &out); err != nil {
		return models.DefaultSettings(), err
	}
	return out, nil
}

func (s *Snapshots) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.save(ctx, KeySettings, settings)
}

// Export collects every key into one backup document.
func (s *Snapshots) Export(ctx context.Context) (*models.Backup, error) {
	b := &models.Backup{SchemaVersion: models.SchemaVersion}
	var err error
	if b.Templates, err = s.Templates(ctx); err != nil {
		return nil, err
	}
	if b.Exercises, err = s.Exercises(ctx); err != nil {
		return nil, err
	}
	if b.WorkoutHistory, err = s.History(ctx); err != nil {
		return nil, err
	}
	if b.CurrentWorkout, err = s.CurrentWorkout(ctx); err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	b.Settings = &settings
	b.Templates = nonNil(b.Templates)
	b.Exercises = nonNil(b.Exercises)
	b.WorkoutHistory = nonNil(b.WorkoutHistory)
	return b, nil
}

// Import overwrites every key present in b. All writes are attempted; the
// returned error combines the failures.
func (s *Snapshots) Import(ctx context.Context, b *models.Backup) error {
	if b == nil {
		return apperr.Validation("import", "backup is empty")
	}
	var err error
	if b.Templates != nil {
		err = multierr.Append(err, s.SaveTemplates(ctx, b.Templates))
	}
	if b.Exercises != nil {
		err = multierr.Append(err, s.SaveExercises(ctx, b.Exercises))
	}
	if b.WorkoutHistory != nil {
		err = multierr.Append(err, s.SaveHistory(ctx, b.WorkoutHistory))
	}
	err = multierr.Append(err, s.SaveCurrentWorkout(ctx, b.CurrentWorkout))
	if b.Settings != nil {
		err = multierr.Append(err, s.SaveSettings(ctx, *b.Settings))
	}
	err = multierr.Append(err, s.saveSchemaVersion(ctx))
	if err != nil {
		return apperr.Persistence("import", err)
	}
	return nil
}

// SchemaVersion returns the stored version, or 0 for data written before versioning.
func (s *Snapshots) SchemaVersion(ctx context.Context) (int, error) {
	raw, err := s.store.Load(ctx, KeySchemaVersion)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Persistence("load "+KeySchemaVersion, err)
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, apperr.Persistence("load "+KeySchemaVersion, err)
	}
	return v, nil
}

func (s *Snapshots) saveSchemaVersion(ctx context.Context) error {
	if err := s.store.Save(ctx, KeySchemaVersion, []byte(strconv.Itoa(models.SchemaVersion))); err != nil {
		return apperr.Persistence("save "+KeySchemaVersion, err)
	}
	return nil
}

func (s *Snapshots) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Persistence("load "+key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, apperr.Persistence("decode "+key, err)
	}
	return true, nil
}

func (s *Snapshots) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Persistence("encode "+key, err)
	}
	if err := s.store.Save(ctx, key, raw); err != nil {
		return apperr.Persistence("save "+key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
