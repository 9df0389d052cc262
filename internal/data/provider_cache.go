package data

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.ProviderDirectory = (*CachedProviderDirectory)(nil)

// ProviderCacheKey is the cache key for the provider list.
const ProviderCacheKey = "carecircle:providers:v1"

// ByteCache is the subset of RedisCacheRepo the provider cache needs.
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// CachedProviderDirectoryOptions groups dependencies for NewCachedProviderDirectory.
type CachedProviderDirectoryOptions struct {
	Next   ports.ProviderDirectory
	Cache  ByteCache
	TTL    time.Duration
	Logger *slog.Logger
}

// CachedProviderDirectory is a read-through cache in front of another directory.
// Cache errors are logged and the underlying directory is used instead.
type CachedProviderDirectory struct {
	next   ports.ProviderDirectory
	cache  ByteCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProviderDirectory wraps opts.Next. With a nil cache or zero TTL it returns opts.Next unchanged.
func NewCachedProviderDirectory(opts CachedProviderDirectoryOptions) ports.ProviderDirectory {
	if opts.Cache == nil || opts.TTL <= 0 {
		return opts.Next
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProviderDirectory{
		next:   opts.Next,
		cache:  opts.Cache,
		ttl:    opts.TTL,
		logger: logger.With("component", "provider_cache"),
	}
}

// List serves from cache when possible and fills it on a miss.
func (c *CachedProviderDirectory) List(ctx context.Context) ([]carecircle.CareProvider, error) {
	if raw, err := c.cache.Get(ctx, ProviderCacheKey); err != nil {
		c.logger.WarnContext(ctx, "provider cache read failed", "error", err)
	} else if raw != nil {
		var providers []carecircle.CareProvider
		if err := json.Unmarshal(raw, &providers); err == nil {
			return providers, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable provider cache entry")
	}

	providers, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(providers); err == nil {
		if err := c.cache.Set(ctx, ProviderCacheKey, raw, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "provider cache write failed", "error", err)
		}
	}
	return providers, nil
}

// InvalidateProviderCache drops the cached list without needing a directory.
func InvalidateProviderCache(ctx context.Context, cache ByteCache) error {
	_, err := cache.Delete(ctx, ProviderCacheKey)
	return err
}
