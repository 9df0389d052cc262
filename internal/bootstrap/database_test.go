package bootstrap

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/carecircle/config"
)

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host: "db", Port: 5432, User: "care", Password: "p@ss/word", Name: "carecircle", SSLMode: "require",
	})
	assert.Equal(t, "postgres://care:p%40ss%2Fword@db:5432/carecircle?sslmode=require", dsn)
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantDesc string
		wantErr  string
	}{
		{name: "direct host", cfg: config.RedisConfig{URI: "localhost:6379"}, wantDesc: "localhost:6379"},
		{name: "direct url", cfg: config.RedisConfig{URI: "redis://:secret@cache:6380/2"}, wantDesc: "cache:6380"},
		{name: "direct empty", cfg: config.RedisConfig{URI: "  "}, wantErr: "requires a URI"},
		{
			name:     "sentinel",
			cfg:      config.RedisConfig{UseSentinel: true, SentinelNodes: []string{" s1:26379 "}, SentinelMasterName: "mymaster"},
			wantDesc: "sentinel:mymaster",
		},
		{name: "sentinel without nodes", cfg: config.RedisConfig{UseSentinel: true}, wantErr: "at least one sentinel node"},
		{
			name:     "cluster nodes",
			cfg:      config.RedisConfig{UseCluster: true, ClusterNodes: []string{"n1:7000", "", "n2:7000"}},
			wantDesc: "cluster:n1:7000,n2:7000",
		},
		{
			name:     "cluster from uri",
			cfg:      config.RedisConfig{UseCluster: true, URI: "rediss://user:pw@cluster.example.com:6379"},
			wantDesc: "cluster:cluster.example.com:6379",
		},
		{name: "cluster without address", cfg: config.RedisConfig{UseCluster: true}, wantErr: "at least one address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, desc, err := NewRedisClient(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestNewRedisClient_ClusterURIKeepsTLS(t *testing.T) {
	client, _, err := NewRedisClient(config.RedisConfig{UseCluster: true, URI: "rediss://user:pw@cluster.example.com:6379"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cc, ok := client.(*redis.ClusterClient)
	require.True(t, ok)
	assert.NotNil(t, cc.Options().TLSConfig)
	assert.Equal(t, "user", cc.Options().Username)
	assert.Equal(t, "pw", cc.Options().Password)
}

func TestRedactAddr(t *testing.T) {
	assert.Equal(t, "cache:6379", redactAddr("secret@cache:6379"))
	assert.Equal(t, "sentinel:mymaster", redactAddr("sentinel:mymaster"))
}
