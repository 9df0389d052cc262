package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/data"
	httpx "github.com/target/carecircle/internal/http"
	"github.com/target/carecircle/internal/observability/metrics"
)

// AppDeps groups the connected infrastructure the app is built on.
type AppDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB // nil unless providers come from Postgres
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// App is the wired application, ready to serve.
type App struct {
	Addr     string
	Router   httpx.RouterServices
	Registry *prometheus.Registry
	logger   *slog.Logger
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewApp builds the services behind the router.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("app config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := NewRegistry()
	recorder := metrics.New(reg)

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:          cfg.Auth,
		RedisClient:   deps.RedisClient,
		SessionPrefix: cfg.Redis.KeyPrefix,
		Metrics:       recorder,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	providers, err := BuildProviderDirectory(ProviderConfig{
		CareCircle:  cfg.CareCircle,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	services := httpx.RouterServices{
		Auth:         auth,
		Providers:    providers,
		Geometry:     BuildGeometry(cfg.CareCircle),
		ProfileWait:  cfg.CareCircle.ProfileWait,
		Metrics:      recorder,
		HealthChecks: healthChecks(deps),
		CookieDomain: cfg.HTTP.CookieDomain,
		IsDev:        cfg.IsDev,
		Logger:       logger,
	}
	if cfg.Observability.Metrics.IsEnabled() {
		services.Gatherer = reg
	}

	return &App{Addr: cfg.HTTP.Addr, Router: services, Registry: reg, logger: logger}, nil
}

func healthChecks(deps AppDeps) map[string]httpx.HealthCheck {
	checks := map[string]httpx.HealthCheck{}
	if deps.RedisClient != nil {
		checks["redis"] = data.NewRedisCacheRepo(deps.RedisClient).Health
	}
	if deps.DB != nil {
		checks["postgres"] = deps.DB.PingContext
	}
	return checks
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives, or the listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	server, err := StartHTTPServer(HTTPServerConfig{
		Addr:     a.Addr,
		Services: a.Router,
		Logger:   a.logger,
		ErrCh:    errCh,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down services...")
		return ShutdownHTTPServer(context.WithoutCancel(ctx), server, a.logger)
	case err := <-errCh:
		if stopErr := ShutdownHTTPServer(context.WithoutCancel(ctx), server, a.logger); stopErr != nil &&
			!errors.Is(stopErr, http.ErrServerClosed) {
			a.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}
