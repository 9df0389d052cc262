package httpx

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	webassets "github.com/target/carecircle"
	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/ports"
	"github.com/target/carecircle/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth        *service.AuthService
	Providers   ports.ProviderDirectory
	Geometry    carecircle.Geometry
	ProfileWait time.Duration
	Metrics     *metrics.Recorder
	// Gatherer enables GET /metrics when set.
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]HealthCheck
	CookieDomain string
	IsDev        bool // templates and static files from disk
	// TemplateFS and StaticFS override the embedded assets (tests).
	TemplateFS fs.FS
	StaticFS   fs.FS
	Logger     *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := resolveAssets(services)
	if err != nil {
		return nil, err
	}
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:            renderer,
		Auth:         services.Auth,
		Providers:    services.Providers,
		Geometry:     services.Geometry,
		ProfileWait:  services.ProfileWait,
		Metrics:      services.Metrics,
		CookieDomain: services.CookieDomain,
		IsDev:        services.IsDev,
		Logger:       logger,
	}

	mux := http.NewServeMux()
	health := healthHandler(services.HealthChecks)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	registerUIRoutes(mux, ui, services.Auth)

	handler := http.Handler(&notFoundHandler{mux: mux, ui: ui})
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	handler = Recover(logger)(handler)
	handler = Logging(logger)(handler)
	return handler, nil
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, auth SessionLoader) {
	optional := OptionalSession(auth)
	required := RequireSession(auth)

	mux.Handle("GET /{$}", optional(http.HandlerFunc(h.Landing)))
	mux.HandleFunc("GET /auth/dialog", h.Dialog)
	mux.HandleFunc("DELETE /auth/dialog", h.CloseDialog)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/signup", h.Signup)
	mux.Handle("POST /auth/logout", required(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /dashboard", required(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard/layout.json", required(http.HandlerFunc(h.Layout)))
}

// resolveAssets picks the template and static filesystems: explicit overrides,
// then disk in dev mode, then the embedded copies.
func resolveAssets(s RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := s.TemplateFS, s.StaticFS
	if s.IsDev {
		if templateFS == nil {
			templateFS = os.DirFS(TemplatePathFromRoot)
		}
		if staticFS == nil {
			staticFS = os.DirFS(StaticPathFromRoot)
		}
	}
	var err error
	if templateFS == nil {
		if templateFS, err = fs.Sub(webassets.TemplateFS, TemplatePathFromRoot); err != nil {
			return nil, nil, err
		}
	}
	if staticFS == nil {
		if staticFS, err = fs.Sub(webassets.StaticFS, StaticPathFromRoot); err != nil {
			return nil, nil, err
		}
	}
	return templateFS, staticFS, nil
}

// hashedFilePattern matches content-hashed asset names such as app.abc123de.css.
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css|svg)$`)

// staticWithCacheHeaders caches hashed assets for a year and revalidates the rest.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and renders the 404 page for unknown routes.
type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		h.mux.ServeHTTP(w, r)
		return
	}
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound && cw.header.Get("Content-Type") != "application/json" {
		h.ui.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}
