package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindocean/mindocean/internal/config"
	storepkg "github.com/mindocean/mindocean/internal/store"
	storepg "github.com/mindocean/mindocean/internal/store/postgres"
	storelite "github.com/mindocean/mindocean/internal/store/sqlite"
)

const bootstrapTimeout = 30 * time.Second

// NewStore returns a store.Store backed by the configured driver.
// SQLite opens and migrates synchronously since the file is local.
// Postgres opens synchronously so health checks can probe immediately,
// then runs the bootstrap check in the background.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := storelite.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		return storelite.New(db), nil

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("MINDOCEAN_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, dsn); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
			}
		}()
		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
