package httpx

import (
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/ports"
	"github.com/target/carecircle/internal/service"
)

// UIHandlers serves the landing page, the auth dialog and the dashboard.
type UIHandlers struct {
	T            *TemplateRenderer
	Auth         *service.AuthService
	Providers    ports.ProviderDirectory
	Geometry     carecircle.Geometry
	ProfileWait  time.Duration
	Metrics      *metrics.Recorder
	CookieDomain string
	IsDev        bool
	Logger       *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// renderPage renders a full page, or only its content for htmx navigation.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	var err error
	if IsHTMX(r) && HXTarget(r) == "main" {
		page, _ := data["CurrentPage"].(string)
		err = h.T.render(w, status, ContentTemplateFor(page), data)
	} else {
		err = h.T.RenderFull(w, status, data)
	}
	if err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// renderError shows the error page. htmx requests get a 200 so the swap happens.
func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := NewTemplateData(r, PageMeta{Title: http.StatusText(status)}).
		With("Status", status).
		With("Message", message).
		Build()
	if IsHTMX(r) {
		status = http.StatusOK
	}
	if err := h.T.RenderError(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "We couldn't find that page.")
}

// logAndRenderTemplateError logs template errors and shows details in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().Error("template rendering failed",
		slog.Any("error", err),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<pre class="template-error">` + html.EscapeString(err.Error()) + `</pre>`))
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
