package state

import (
	"context"
	"fmt"

	"github.com/mauv0809/soloq-tracker/internal/config"
	"github.com/mauv0809/soloq-tracker/internal/database"
)

// Open returns the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StateConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.StateBackendFile:
		return NewFileStore(cfg.Path), nil
	case config.StateBackendSQLite:
		db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewSQLStore(db, teardown), nil
	case config.StateBackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
