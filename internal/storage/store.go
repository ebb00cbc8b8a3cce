package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when a key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// Snapshot keys. Values are JSON documents.
const (
	KeyTemplates      = "templates"
	KeyExercises      = "exercises"
	KeyWorkoutHistory = "workoutHistory"
	KeyCurrentWorkout = "currentWorkout"
	KeySettings       = "settings"
	KeySchemaVersion  = "schemaVersion"
)

// Store is a durable key/value snapshot store. It carries no business logic.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
