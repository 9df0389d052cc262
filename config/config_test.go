package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OIDC")
	t.Setenv("AUTH_HOSTED_URL", "https://auth.example.com/auth/v1")
	t.Setenv("AUTH_HOSTED_API_KEY", "anon-key")
	t.Setenv("AUTH_OIDC_CLIENT_ID", "app-client")
	t.Setenv("AUTH_OIDC_CLIENT_SECRET", "super-secret")
	t.Setenv("AUTH_OIDC_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("SESSION_TTL", "30m")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOIDC,
		Hosted: HostedAuthConfig{
			URL:             "https://auth.example.com/auth/v1",
			APIKey:          "anon-key",
			DisplayNameExpr: "user_metadata.full_name",
		},
		OIDC: OIDCConfig{
			ClientID:        "app-client",
			ClientSecret:    "super-secret",
			Scope:           "openid profile email",
			DiscoveryURL:    "https://login.example.com/.well-known/openid-configuration",
			DisplayNameExpr: "name",
		},
		DevAuth: DevAuthConfig{
			Email:    "dev@example.com",
			Password: "carecircle",
			FullName: "Dev User",
		},
		SessionTTL:  30 * time.Minute,
		HTTPTimeout: 10 * time.Second,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalTextRejectsUnknown(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("saml")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{
		Hosted:      HostedAuthConfig{URL: " https://auth.example.com/auth/v1/ "},
		SessionTTL:  -1,
		HTTPTimeout: 0,
	}
	cfg.Sanitize()

	if cfg.Hosted.URL != "https://auth.example.com/auth/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Hosted.URL)
	}
	if cfg.Hosted.DisplayNameExpr != "user_metadata.full_name" {
		t.Fatalf("expected default display name expression, got %q", cfg.Hosted.DisplayNameExpr)
	}
	if cfg.SessionTTL != time.Hour || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected default durations, got ttl=%s timeout=%s", cfg.SessionTTL, cfg.HTTPTimeout)
	}
}

func TestCareCircleConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	cc := cfg.CareCircle
	if cc.ProviderSource != ProviderSourceStatic {
		t.Fatalf("expected static provider source, got %q", cc.ProviderSource)
	}
	if cc.CanvasWidth != 600 || cc.CanvasHeight != 600 || cc.Radius != 250 {
		t.Fatalf("unexpected geometry: %+v", cc)
	}
	if cc.ProfileWait != 1500*time.Millisecond {
		t.Fatalf("unexpected profile wait: %s", cc.ProfileWait)
	}
	if cfg.UsesPostgres() {
		t.Fatalf("static provider source should not need postgres")
	}
}

func TestCareCircleConfig_Sanitize(t *testing.T) {
	cfg := CareCircleConfig{
		ProviderSource: " Postgres ",
		CanvasWidth:    0,
		CanvasHeight:   400,
		Radius:         -5,
		ProfileWait:    -time.Second,
	}
	cfg.Sanitize()

	if cfg.ProviderSource != ProviderSourcePostgres {
		t.Fatalf("expected postgres source, got %q", cfg.ProviderSource)
	}
	if cfg.CanvasWidth != DefaultCanvasSize || cfg.CanvasHeight != DefaultCanvasSize {
		t.Fatalf("expected default canvas, got %vx%v", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.Radius != DefaultRadius {
		t.Fatalf("expected default radius, got %v", cfg.Radius)
	}
	if cfg.ProfileWait != 0 {
		t.Fatalf("expected non-negative wait, got %s", cfg.ProfileWait)
	}

	cfg = CareCircleConfig{ProviderSource: "sqlite", CanvasWidth: 800, CanvasHeight: 800, Radius: 300}
	cfg.Sanitize()
	if cfg.ProviderSource != ProviderSourceStatic {
		t.Fatalf("expected unknown source to fall back to static, got %q", cfg.ProviderSource)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled: true,
		Path:    " ",
	}

	cfg.Sanitize()

	if cfg.IsEnabled() {
		t.Fatalf("expected metrics to be disabled when path is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled: true,
		Path:    " metrics ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.Path != "/metrics" {
		t.Fatalf("expected path to be normalised, got %q", cfg.Path)
	}
}

func TestObservabilityLoggingConfig_SlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := ObservabilityLoggingConfig{Level: in}
		cfg.Sanitize()
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("level %q: expected %v, got %v", in, want, got)
		}
	}
}
