package bootstrap

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/data"
	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/ports"
)

// ProviderConfig contains what the provider directory may read from.
type ProviderConfig struct {
	CareCircle  config.CareCircleConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildProviderDirectory returns the static sequence, or the Postgres table
// behind a Redis read-through cache.
func BuildProviderDirectory(cfg ProviderConfig) (ports.ProviderDirectory, error) {
	if cfg.CareCircle.ProviderSource != config.ProviderSourcePostgres {
		return data.StaticProviderDirectory{}, nil
	}
	if cfg.DB == nil {
		return nil, errors.New("postgres provider source requires a database")
	}

	var cache data.ByteCache
	if cfg.RedisClient != nil {
		cache = data.NewRedisCacheRepo(cfg.RedisClient)
	}
	return data.NewCachedProviderDirectory(data.CachedProviderDirectoryOptions{
		Next:   data.NewProviderRepo(cfg.DB),
		Cache:  cache,
		TTL:    cfg.CareCircle.ProviderCacheTTL,
		Logger: cfg.Logger,
	}), nil
}

// BuildGeometry converts the configured canvas into layout geometry.
func BuildGeometry(cfg config.CareCircleConfig) carecircle.Geometry {
	return carecircle.NewGeometry(cfg.CanvasWidth, cfg.CanvasHeight, cfg.Radius)
}
