package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/config"
)

// Open builds the store selected by cfg. Postgres migrations run before the
// pool connects. With CacheMB > 0 the store is wrapped in a Cached.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		store = NewMemory()
	case config.DriverSQLite, "":
		store, err = OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn, cfg.MigrationsDir); err != nil {
			return nil, err
		}
		store, err = NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheMB > 0 {
		store = NewCached(store, cfg.CacheMB)
	}
	return store, nil
}
