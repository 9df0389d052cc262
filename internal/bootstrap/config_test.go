package bootstrap

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/carecircle/config"
)

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("AUTH_OIDC_DISCOVERY_URL", " https://idp.example.com/.well-known/openid-configuration ")
	t.Setenv("CARECIRCLE_PROVIDER_SOURCE", "POSTGRES")
	t.Setenv("CARECIRCLE_RADIUS", "-1")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.AuthModeOIDC, cfg.Auth.Mode)
	assert.Equal(t, "https://idp.example.com/.well-known/openid-configuration", cfg.Auth.OIDC.DiscoveryURL)
	assert.Equal(t, config.ProviderSourcePostgres, cfg.CareCircle.ProviderSource)
	assert.Equal(t, config.DefaultRadius, cfg.CareCircle.Radius)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.Logging.SlogLevel())
	assert.True(t, cfg.UsesPostgres())
}

func TestLoadConfig_RejectsUnknownAuthMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_MODE", "saml")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AppConfig
		wantErr string
	}{
		{
			name:    "hosted missing key",
			cfg:     config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeHosted, Hosted: config.HostedAuthConfig{URL: "https://a"}}},
			wantErr: "AUTH_HOSTED_API_KEY",
		},
		{
			name: "hosted complete",
			cfg:  config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeHosted, Hosted: config.HostedAuthConfig{URL: "https://a", APIKey: "k"}}},
		},
		{
			name:    "oidc missing discovery",
			cfg:     config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeOIDC, OIDC: config.OIDCConfig{ClientID: "c"}}},
			wantErr: "AUTH_OIDC_DISCOVERY_URL",
		},
		{
			name:    "dev outside dev mode",
			cfg:     config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeDev}},
			wantErr: "DEV=true",
		},
		{
			name: "dev in dev mode",
			cfg:  config.AppConfig{IsDev: true, Auth: config.AuthConfig{Mode: config.AuthModeDev}},
		},
		{
			name: "bad session key",
			cfg: config.AppConfig{IsDev: true, Auth: config.AuthConfig{
				Mode: config.AuthModeDev, SessionEncryptionKey: "too-short",
			}},
			wantErr: "SESSION_ENCRYPTION_KEY",
		},
		{
			name: "hex session key",
			cfg: config.AppConfig{IsDev: true, Auth: config.AuthConfig{
				Mode: config.AuthModeDev, SessionEncryptionKey: strings.Repeat("ab", 32),
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(&tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Error(t, ValidateConfig(nil))
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(slog.LevelInfo) })
	SetLogLevel(slog.LevelWarn)
	assert.Equal(t, slog.LevelWarn, logLevel.Level())
}
