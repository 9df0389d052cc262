package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/carecircle/internal/domain/carecircle"
	corefuncs "github.com/target/carecircle/internal/http/templates/core"
	"github.com/target/carecircle/internal/service"
)

// Dashboard renders the care circle for the signed-in user.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboardFor(w, r)
	if !ok {
		return
	}
	defer dash.Unmount()

	view, err := dash.Load(r.Context(), h.ProfileWait)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "dashboard load failed", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "We couldn't load your care circle. Please try again.")
		return
	}

	data := NewTemplateData(r, PageMeta{Title: "Your Care Circle", CurrentPage: PageDashboard}).
		With("Dashboard", newDashboardView(view.DisplayName, view.Geometry, view.Points, corefuncs.Coord)).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// layoutResponse is the JSON shape of GET /dashboard/layout.json.
type layoutResponse struct {
	Geometry carecircle.Geometry      `json:"geometry"`
	Points   []carecircle.LayoutPoint `json:"points"`
}

// Layout returns the computed provider positions as JSON.
// GET /dashboard/layout.json.
func (h *UIHandlers) Layout(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboardFor(w, r)
	if !ok {
		return
	}
	points, err := dash.Layout(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "layout failed", slog.Any("error", err))
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "layout_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, layoutResponse{Geometry: dash.Geometry(), Points: points})
}

func (h *UIHandlers) dashboardFor(w http.ResponseWriter, r *http.Request) (*service.Dashboard, bool) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		Redirect(w, r, PathLanding)
		return nil, false
	}
	return service.NewDashboard(service.DashboardOptions{
		Session:   h.Auth.Bind(*sess),
		Providers: h.Providers,
		Geometry:  h.Geometry,
		Metrics:   h.Metrics,
		Logger:    h.logger(),
	}), true
}
