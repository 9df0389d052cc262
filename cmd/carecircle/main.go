package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	bootstrap.SetLogLevel(cfg.Observability.Logging.SlogLevel())

	if err = bootstrap.ValidateConfig(&cfg); err != nil {
		return err
	}
	logStartupInfo(ctx, logger, &cfg)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()

		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	app, err := bootstrap.NewApp(ctx, bootstrap.AppDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting carecircle",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"provider_source", cfg.CareCircle.ProviderSource,
		"dev", cfg.IsDev,
	)
}

// initInfrastructure connects Redis for sessions and, when providers live in
// Postgres, the database.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	deps := bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	redisClient, err := bootstrap.ConnectRedis(ctx, deps)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if !cfg.UsesPostgres() {
		return nil, redisClient, nil
	}

	db, err := bootstrap.ConnectDB(ctx, deps)
	if err != nil {
		if cerr := redisClient.Close(); cerr != nil {
			return nil, nil, fmt.Errorf("connect db: %w", errors.Join(err, fmt.Errorf("close redis: %w", cerr)))
		}
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return db, redisClient, nil
}
