package httpx

// Page identifiers map to "<page>-content" templates.
const (
	PageLanding   = "landing"
	PageDashboard = "dashboard"
)

// Cookie names.
const (
	SessionCookieName = "session_id"
)

// Navigation targets.
const (
	PathLanding   = "/"
	PathDashboard = "/dashboard"
)

// Template paths used for loading templates in tests and dev mode.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

// ContentTemplateFor returns the template that renders the body of page.
func ContentTemplateFor(page string) string {
	return page + "-content"
}
