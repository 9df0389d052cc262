package config

import (
	"strings"
	"time"
)

// ProviderSource selects where the dashboard reads care providers from.
type ProviderSource string

const (
	// ProviderSourceStatic serves the built-in provider sequence.
	ProviderSourceStatic ProviderSource = "static"
	// ProviderSourcePostgres reads providers from the care_providers table.
	ProviderSourcePostgres ProviderSource = "postgres"
)

// Default layout geometry, in logical canvas units.
const (
	DefaultCanvasSize = 600.0
	DefaultRadius     = 250.0
)

// CareCircleConfig controls the dashboard.
type CareCircleConfig struct {
	ProviderSource ProviderSource `env:"PROVIDER_SOURCE" envDefault:"static"`

	CanvasWidth  float64 `env:"CANVAS_WIDTH"  envDefault:"600"`
	CanvasHeight float64 `env:"CANVAS_HEIGHT" envDefault:"600"`
	Radius       float64 `env:"RADIUS"        envDefault:"250"`

	// ProfileWait bounds how long the dashboard waits for the display name
	// before rendering without it.
	ProfileWait time.Duration `env:"PROFILE_WAIT" envDefault:"1500ms"`

	// ProviderCacheTTL caches the postgres provider list in Redis; 0 disables.
	ProviderCacheTTL time.Duration `env:"PROVIDER_CACHE_TTL" envDefault:"5m"`
}

// Sanitize falls back to defaults for unusable geometry.
func (c *CareCircleConfig) Sanitize() {
	switch ProviderSource(strings.ToLower(strings.TrimSpace(string(c.ProviderSource)))) {
	case ProviderSourcePostgres:
		c.ProviderSource = ProviderSourcePostgres
	default:
		c.ProviderSource = ProviderSourceStatic
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		c.CanvasWidth, c.CanvasHeight = DefaultCanvasSize, DefaultCanvasSize
	}
	if c.Radius <= 0 {
		c.Radius = DefaultRadius
	}
	if c.ProfileWait < 0 {
		c.ProfileWait = 0
	}
	if c.ProviderCacheTTL < 0 {
		c.ProviderCacheTTL = 0
	}
}
