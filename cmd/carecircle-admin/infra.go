package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/bootstrap"
)

type connectOptions struct {
	WantDB    bool
	WantRedis bool
}

// infra holds whatever connections a command asked for; unused fields are nil.
type infra struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

func (i *infra) Close(logger *slog.Logger) {
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			logger.Warn("db close failed", "error", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
}

type connectFn func(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig, opts connectOptions) (*infra, error)

// connectInfra opens the requested connections. A Redis that cannot be reached
// is logged and left nil: the admin commands only use it to drop caches.
func connectInfra(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig, opts connectOptions) (*infra, error) {
	deps := bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	out := &infra{}

	if opts.WantDB {
		db, err := bootstrap.ConnectDB(ctx, deps)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		out.DB = db
	}
	if opts.WantRedis {
		client, err := bootstrap.ConnectRedis(ctx, deps)
		if err != nil {
			logger.WarnContext(ctx, "redis unavailable, skipping cache maintenance", "error", err)
		} else {
			out.Redis = client
		}
	}
	return out, nil
}
