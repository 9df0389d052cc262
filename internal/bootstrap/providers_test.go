package bootstrap

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/data"
	"github.com/target/carecircle/internal/domain/carecircle"
)

func TestBuildProviderDirectory(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		dir, err := BuildProviderDirectory(ProviderConfig{CareCircle: config.CareCircleConfig{ProviderSource: config.ProviderSourceStatic}})
		require.NoError(t, err)
		got, err := dir.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, carecircle.DefaultProviders(), got)
	})

	t.Run("postgres requires a database", func(t *testing.T) {
		_, err := BuildProviderDirectory(ProviderConfig{CareCircle: config.CareCircleConfig{ProviderSource: config.ProviderSourcePostgres}})
		assert.Error(t, err)
	})

	t.Run("postgres without cache", func(t *testing.T) {
		db := &sql.DB{}
		dir, err := BuildProviderDirectory(ProviderConfig{
			CareCircle: config.CareCircleConfig{ProviderSource: config.ProviderSourcePostgres, ProviderCacheTTL: time.Minute},
			DB:         db,
		})
		require.NoError(t, err)
		assert.IsType(t, &data.ProviderRepo{}, dir)
	})

	t.Run("postgres behind redis", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		t.Cleanup(func() { _ = client.Close() })
		dir, err := BuildProviderDirectory(ProviderConfig{
			CareCircle:  config.CareCircleConfig{ProviderSource: config.ProviderSourcePostgres, ProviderCacheTTL: time.Minute},
			DB:          &sql.DB{},
			RedisClient: client,
		})
		require.NoError(t, err)
		assert.IsType(t, &data.CachedProviderDirectory{}, dir)
	})
}

func TestBuildGeometry(t *testing.T) {
	g := BuildGeometry(config.CareCircleConfig{CanvasWidth: 800, CanvasHeight: 600, Radius: 200})
	assert.Equal(t, carecircle.Geometry{Width: 800, Height: 600, CenterX: 400, CenterY: 300, Radius: 200}, g)
}
