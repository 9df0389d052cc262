// Package carecircle embeds the web assets for production builds.
package carecircle

import "embed"

// In dev mode templates and static files are read from disk instead, so edits
// show up without a rebuild.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
