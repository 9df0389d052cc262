package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/data/cryptoutil"
)

// logLevel backs the default logger so the level can follow config once loaded.
var logLevel = new(slog.LevelVar)

// InitLogger initializes the structured logger at info level.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// SetLogLevel changes the level of the logger returned by InitLogger.
func SetLogLevel(level slog.Level) { logLevel.Set(level) }

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig checks that the selected identity service is fully configured.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	switch cfg.Auth.Mode {
	case config.AuthModeHosted:
		if cfg.Auth.Hosted.URL == "" || cfg.Auth.Hosted.APIKey == "" {
			return errors.New("AUTH_MODE=hosted requires AUTH_HOSTED_URL and AUTH_HOSTED_API_KEY")
		}
	case config.AuthModeOIDC:
		if cfg.Auth.OIDC.DiscoveryURL == "" || cfg.Auth.OIDC.ClientID == "" {
			return errors.New("AUTH_MODE=oidc requires AUTH_OIDC_DISCOVERY_URL and AUTH_OIDC_CLIENT_ID")
		}
	case config.AuthModeDev:
		if !cfg.IsDev {
			return errors.New("AUTH_MODE=dev is only allowed with DEV=true")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	if cfg.Auth.SessionEncryptionKey != "" {
		if _, err := cryptoutil.ParseKey(cfg.Auth.SessionEncryptionKey); err != nil {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY: %w", err)
		}
	}
	return nil
}
