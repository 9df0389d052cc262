package httpx

import (
	"net/http"

	"github.com/target/carecircle/internal/domain/authform"
	"github.com/target/carecircle/internal/domain/carecircle"
)

// PageMeta holds per-page chrome.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a builder seeded with the layout fields every page uses.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	data := map[string]any{
		"Title":       meta.Title,
		"CurrentPage": meta.CurrentPage,
		"CSRFToken":   GetCSRFToken(r),
		"SignedIn":    false,
	}
	if s, ok := GetSessionFromContext(r.Context()); ok {
		data["SignedIn"] = true
		data["Email"] = s.Email
	}
	return &TemplateDataBuilder{data: data}
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

// DialogView is what the auth dialog partial renders.
type DialogView struct {
	Visible     bool
	Form        string
	Action      string
	Title       string
	SubmitLabel string
	BusyLabel   string
	Error       string
	Notice      string
	// Entered values echoed back after a failed submit; passwords never are.
	Email     string
	FullName  string
	CSRFToken string
}

// newDialogView projects the dialog state onto the partial's fields.
func newDialogView(r *http.Request, st authform.State) DialogView {
	idle, busy := st, st
	idle.IsSubmitting, busy.IsSubmitting = false, true
	return DialogView{
		Visible:     st.DialogVisible,
		Form:        st.ActiveForm.String(),
		Action:      "/auth/" + st.ActiveForm.String(),
		Title:       st.Title(),
		SubmitLabel: idle.SubmitLabel(),
		BusyLabel:   busy.SubmitLabel(),
		Error:       st.LastError,
		CSRFToken:   GetCSRFToken(r),
	}
}

// ProviderCard is one positioned card on the dashboard canvas.
type ProviderCard struct {
	Type    string
	Name    string
	IconRef string
	Left    string
	Top     string
}

// DashboardView is what the dashboard page renders.
type DashboardView struct {
	DisplayName string
	Width       string
	Height      string
	CenterLeft  string
	CenterTop   string
	Cards       []ProviderCard
}

func newDashboardView(name string, g carecircle.Geometry, points []carecircle.LayoutPoint, coord func(float64) string) DashboardView {
	cards := make([]ProviderCard, 0, len(points))
	for _, p := range points {
		cards = append(cards, ProviderCard{
			Type:    p.Provider.Type,
			Name:    p.Provider.Name,
			IconRef: p.Provider.IconRef,
			Left:    coord(p.X),
			Top:     coord(p.Y),
		})
	}
	return DashboardView{
		DisplayName: name,
		Width:       coord(g.Width),
		Height:      coord(g.Height),
		CenterLeft:  coord(g.CenterX),
		CenterTop:   coord(g.CenterY),
		Cards:       cards,
	}
}
