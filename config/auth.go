package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents which identity service backs sign-in and sign-up.
type AuthMode string

const (
	// AuthModeHosted talks to a hosted GoTrue-compatible identity service.
	AuthModeHosted AuthMode = "hosted"
	// AuthModeOIDC uses an OIDC provider's password grant.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses an in-memory user directory (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "hosted", "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, oidc, dev)", v)
	}
}

// HostedAuthConfig configures the hosted identity service client.
type HostedAuthConfig struct {
	// URL is the auth API root, e.g. https://xyz.supabase.co/auth/v1.
	URL    string `env:"URL"`
	APIKey string `env:"API_KEY"`
	// DisplayNameExpr is a JMESPath expression evaluated against the user document.
	DisplayNameExpr string `env:"DISPLAY_NAME_EXPR" envDefault:"user_metadata.full_name"`
}

// OIDCConfig contains OIDC password-grant configuration.
type OIDCConfig struct {
	ClientID        string `env:"CLIENT_ID"         envDefault:"carecircle"`
	ClientSecret    string `env:"CLIENT_SECRET"`
	Scope           string `env:"SCOPE"             envDefault:"openid profile email"`
	DiscoveryURL    string `env:"DISCOVERY_URL"`
	DisplayNameExpr string `env:"DISPLAY_NAME_EXPR" envDefault:"name"`
	// RevocationURL, when set, receives the access token on sign-out (RFC 7009).
	RevocationURL string `env:"REVOCATION_URL"`
}

// DevAuthConfig seeds the in-memory identity directory used when AUTH_MODE=dev.
type DevAuthConfig struct {
	Email    string `env:"EMAIL"     envDefault:"dev@example.com"`
	Password string `env:"PASSWORD"  envDefault:"carecircle"`
	FullName string `env:"FULL_NAME" envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity service to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	Hosted  HostedAuthConfig `envPrefix:"AUTH_HOSTED_"`
	OIDC    OIDCConfig       `envPrefix:"AUTH_OIDC_"`
	DevAuth DevAuthConfig    `envPrefix:"DEV_AUTH_"`

	// SessionTTL caps how long a browser session lives when the identity service
	// does not report a token expiry.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// SessionEncryptionKey seals sessions in Redis with AES-256-GCM. It is 64 hex
	// characters or base64 for 32 bytes; empty stores sessions unencrypted.
	SessionEncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`

	// HTTPTimeout bounds every outbound call to the identity service.
	HTTPTimeout time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

// Sanitize trims URLs and restores defaults for non-positive durations.
func (a *AuthConfig) Sanitize() {
	a.Hosted.URL = strings.TrimRight(strings.TrimSpace(a.Hosted.URL), "/")
	a.OIDC.DiscoveryURL = strings.TrimSpace(a.OIDC.DiscoveryURL)
	a.SessionEncryptionKey = strings.TrimSpace(a.SessionEncryptionKey)
	if strings.TrimSpace(a.Hosted.DisplayNameExpr) == "" {
		a.Hosted.DisplayNameExpr = "user_metadata.full_name"
	}
	if strings.TrimSpace(a.OIDC.DisplayNameExpr) == "" {
		a.OIDC.DisplayNameExpr = "name"
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = time.Hour
	}
	if a.HTTPTimeout <= 0 {
		a.HTTPTimeout = 10 * time.Second
	}
}
