// Package devseed loads the default care circle into a development database.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/internal/data"
	"github.com/target/carecircle/internal/domain/carecircle"
)

// ProviderSeeder inserts a provider sequence, skipping names already present.
type ProviderSeeder interface {
	Seed(ctx context.Context, providers []carecircle.CareProvider) (int, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Providers ProviderSeeder
	// Cache is optional; when set the cached provider list is dropped after seeding.
	Cache data.ByteCache
	// Seed defaults to carecircle.DefaultProviders.
	Seed []carecircle.CareProvider
}

// NewServices wires the Postgres provider repo and, if redisClient is non-nil,
// the Redis provider cache.
func NewServices(db *sql.DB, redisClient redis.UniversalClient) Services {
	svcs := Services{Providers: data.NewProviderRepo(db)}
	if redisClient != nil {
		svcs.Cache = data.NewRedisCacheRepo(redisClient)
	}
	return svcs
}

// Run seeds the providers and returns how many rows were inserted.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seed := svcs.Seed
	if seed == nil {
		seed = carecircle.DefaultProviders()
	}

	inserted, err := svcs.Providers.Seed(ctx, seed)
	if err != nil {
		return 0, fmt.Errorf("seed providers: %w", err)
	}
	logger.InfoContext(ctx, "seeded care providers",
		"inserted", inserted,
		"skipped", len(seed)-inserted,
	)

	if svcs.Cache == nil || inserted == 0 {
		return inserted, nil
	}
	if err := data.InvalidateProviderCache(ctx, svcs.Cache); err != nil {
		return inserted, fmt.Errorf("invalidate provider cache: %w", err)
	}
	logger.InfoContext(ctx, "provider cache invalidated")
	return inserted, nil
}

// IsLikelyRemoteHost reports whether a database host is not obviously local.
func IsLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	switch {
	case h == "":
		return false
	case h == "localhost", h == "127.0.0.1", h == "::1":
		return false
	case strings.HasSuffix(h, ".local"):
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

// GuardRemoteHost refuses to touch a remote-looking host unless allowRemote is set.
func GuardRemoteHost(host string, allowRemote bool) error {
	if !IsLikelyRemoteHost(host) || allowRemote {
		return nil
	}
	return fmt.Errorf(
		"refusing to seed potentially remote database host %q; re-run with --allow-remote if this is intentional",
		host,
	)
}
