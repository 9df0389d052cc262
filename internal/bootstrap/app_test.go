package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/target/carecircle/config"
	httpx "github.com/target/carecircle/internal/http"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-redis keeps a pool reaper per client until Close
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func devAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{Auth: devAuth()} // embedded templates; the test cwd has none on disk
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.CareCircle.ProviderSource = config.ProviderSourceStatic
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Sanitize()
	return cfg
}

func TestNewApp(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	app, err := NewApp(context.Background(), AppDeps{Config: devAppConfig(), RedisClient: client, Logger: quietLogger()})
	require.NoError(t, err)

	assert.NotNil(t, app.Router.Auth)
	assert.NotNil(t, app.Router.Gatherer)
	assert.Contains(t, app.Router.HealthChecks, "redis")
	assert.NotContains(t, app.Router.HealthChecks, "postgres")
	assert.Equal(t, 600.0, app.Router.Geometry.Width)

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["carecircle_auth_signout_failures_total"])
	assert.True(t, names["go_goroutines"])
}

func TestNewApp_MetricsDisabled(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := devAppConfig()
	cfg.Observability.Metrics.Enabled = false
	app, err := NewApp(context.Background(), AppDeps{Config: cfg, RedisClient: client, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Nil(t, app.Router.Gatherer)
}

func TestNewApp_RequiresRedisAndConfig(t *testing.T) {
	_, err := NewApp(context.Background(), AppDeps{})
	assert.EqualError(t, err, "app config is required")

	_, err = NewApp(context.Background(), AppDeps{Config: devAppConfig(), Logger: quietLogger()})
	assert.Error(t, err)
}

func TestAppRun_StopsOnCancel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	app, err := NewApp(context.Background(), AppDeps{Config: devAppConfig(), RedisClient: client, Logger: quietLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartHTTPServer_RejectsIncompleteServices(t *testing.T) {
	_, err := StartHTTPServer(HTTPServerConfig{Services: httpx.RouterServices{}, Logger: quietLogger()})
	assert.Error(t, err)
}

func TestShutdownHTTPServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(context.Background(), nil, nil))

	srv := httptest.NewUnstartedServer(http.NotFoundHandler())
	srv.Start()
	t.Cleanup(srv.Close)
	assert.NoError(t, ShutdownHTTPServer(context.Background(), srv.Config, quietLogger()))
}
