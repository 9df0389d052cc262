package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/adapters/devauth"
	"github.com/target/carecircle/internal/adapters/hostedauth"
	"github.com/target/carecircle/internal/adapters/oidc"
	redisadapter "github.com/target/carecircle/internal/adapters/redis"
	"github.com/target/carecircle/internal/data/cryptoutil"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/ports"
	"github.com/target/carecircle/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	// SessionPrefix namespaces session keys; defaults to the store's prefix.
	SessionPrefix string
	Metrics       *metrics.Recorder
	Logger        *slog.Logger
	// HTTPClient overrides the client used to reach the identity service (tests).
	HTTPClient *http.Client
}

// BuildIdentityService creates the identity service for the configured mode,
// instrumented with metrics.
func BuildIdentityService(ctx context.Context, cfg AuthConfig) (ports.IdentityService, error) {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Auth.HTTPTimeout}
	}

	var (
		next ports.IdentityService
		err  error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeHosted:
		next, err = hostedauth.New(hostedauth.Config{
			BaseURL:         cfg.Auth.Hosted.URL,
			APIKey:          cfg.Auth.Hosted.APIKey,
			DisplayNameExpr: cfg.Auth.Hosted.DisplayNameExpr,
			HTTPClient:      hc,
		})
	case config.AuthModeOIDC:
		next, err = oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:        cfg.Auth.OIDC.ClientID,
			ClientSecret:    cfg.Auth.OIDC.ClientSecret,
			Scope:           cfg.Auth.OIDC.Scope,
			DiscoveryURL:    cfg.Auth.OIDC.DiscoveryURL,
			DisplayNameExpr: cfg.Auth.OIDC.DisplayNameExpr,
			RevocationURL:   cfg.Auth.OIDC.RevocationURL,
			HTTPClient:      hc,
		})
	case config.AuthModeDev:
		next, err = devauth.NewProvider(devauth.Config{
			Users: []devauth.User{{
				Email:    cfg.Auth.DevAuth.Email,
				Password: cfg.Auth.DevAuth.Password,
				FullName: cfg.Auth.DevAuth.FullName,
			}},
			SessionDuration: cfg.Auth.SessionTTL,
		})
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s identity service: %w", cfg.Auth.Mode, err)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "identity service configured", "mode", cfg.Auth.Mode)
	}
	return service.InstrumentIdentity(service.InstrumentedIdentityOptions{
		Next:    next,
		Metrics: cfg.Metrics,
		Logger:  cfg.Logger,
	}), nil
}

// BuildAuthService wires the identity service to the Redis session store.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth service requires a redis client for sessions")
	}
	identity, err := BuildIdentityService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sealer, err := sessionSealer(cfg.Auth.SessionEncryptionKey)
	if err != nil {
		return nil, err
	}
	sessions := redisadapter.NewSessionStoreWithOptions(cfg.RedisClient, redisadapter.SessionStoreOptions{
		Prefix: cfg.SessionPrefix,
		Sealer: sealer,
	})
	return service.NewAuthService(service.AuthServiceOptions{
		Identity:   identity,
		Sessions:   sessions,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	}), nil
}

func sessionSealer(key string) (cryptoutil.Sealer, error) {
	if key == "" {
		return cryptoutil.Plaintext{}, nil
	}
	raw, err := cryptoutil.ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("session encryption key: %w", err)
	}
	return cryptoutil.NewAESGCMSealer(raw)
}
