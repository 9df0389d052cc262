package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/authform"
	"github.com/target/carecircle/internal/service"
)

// Messages shown in the dialog outside the identity service's own errors.
const (
	ConfirmEmailNotice = "Check your email to confirm your account, then sign in."
	SessionStartFailed = "We couldn't start your session. Please try again."
)

// Landing renders the landing page with the dialog closed.
// GET /.
func (h *UIHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	if IsSignedIn(r.Context()) {
		Redirect(w, r, PathDashboard)
		return
	}
	h.renderLanding(w, r, http.StatusOK, newDialogView(r, authform.State{}))
}

func (h *UIHandlers) renderLanding(w http.ResponseWriter, r *http.Request, status int, dialog DialogView) {
	data := NewTemplateData(r, PageMeta{Title: "CareCircle", CurrentPage: PageLanding}).
		With("Dialog", dialog).
		Build()
	h.renderPage(w, r, status, data)
}

// Dialog opens the dialog or switches forms.
// GET /auth/dialog?form=login|signup.
func (h *UIHandlers) Dialog(w http.ResponseWriter, r *http.Request) {
	gate := h.newGate(authform.State{})
	defer gate.Unmount()

	raw := r.URL.Query().Get("form")
	form, err := authform.ParseForm(raw)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return
	}
	if raw == "" {
		gate.Open()
	} else {
		gate.Show(form)
	}
	h.respondDialog(w, r, http.StatusOK, newDialogView(r, gate.State()))
}

// CloseDialog hides the dialog.
// DELETE /auth/dialog.
func (h *UIHandlers) CloseDialog(w http.ResponseWriter, r *http.Request) {
	gate := h.newGate(authform.State{}.Open())
	defer gate.Unmount()
	gate.Close()
	h.respondDialog(w, r, http.StatusOK, newDialogView(r, gate.State()))
}

// Login handles the login form.
// POST /auth/login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, authform.Login)
}

// Signup handles the signup form.
// POST /auth/signup.
func (h *UIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, authform.Signup)
}

// sessionOutcome records what the session observer did with a grant.
type sessionOutcome struct {
	session *domainauth.Session
	pending bool
	err     error
}

func (h *UIHandlers) submit(w http.ResponseWriter, r *http.Request, form authform.Form) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return
	}
	sub := submissionFrom(form, r.PostForm)

	gate := h.newGate(authform.State{}.Show(form))
	defer gate.Unmount()

	var outcome sessionOutcome
	gate.OnSessionChange(func(ctx context.Context, grant domainauth.Grant) {
		outcome = h.openSession(ctx, grant)
	})

	submitErr := gate.Submit(r.Context(), sub)

	if outcome.session != nil {
		h.setSessionCookie(w, r, *outcome.session)
		Redirect(w, r, PathDashboard)
		return
	}

	view := newDialogView(r, gate.State())
	view.Email = r.PostForm.Get("email")
	view.FullName = r.PostForm.Get("fullName")
	status := http.StatusOK
	switch {
	case submitErr != nil:
		status = http.StatusUnprocessableEntity
	case outcome.err != nil:
		view.Error = SessionStartFailed
		status = http.StatusInternalServerError
	case outcome.pending:
		view.Notice = ConfirmEmailNotice
	}
	h.respondDialog(w, r, status, view)
}

// openSession is the gate's session observer: it persists a session for grants
// that carry tokens.
func (h *UIHandlers) openSession(ctx context.Context, grant domainauth.Grant) sessionOutcome {
	sess, err := h.Auth.OpenSession(ctx, grant)
	switch {
	case errors.Is(err, service.ErrNoSession):
		return sessionOutcome{pending: true}
	case err != nil:
		h.logger().ErrorContext(ctx, "failed to open session",
			slog.String("user_id", grant.Identity.UserID),
			slog.Any("error", err),
		)
		return sessionOutcome{err: err}
	}
	return sessionOutcome{session: &sess}
}

// respondDialog swaps the dialog for htmx and renders the whole landing page
// otherwise. htmx only swaps 2xx responses, so it always gets a 200.
func (h *UIHandlers) respondDialog(w http.ResponseWriter, r *http.Request, status int, view DialogView) {
	if !IsHTMX(r) {
		h.renderLanding(w, r, status, view)
		return
	}
	if err := h.T.RenderFragment(w, "auth-dialog", view); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

func (h *UIHandlers) newGate(initial authform.State) *service.AuthGate {
	return service.NewAuthGate(service.AuthGateOptions{
		Identity: h.Auth.Identity(),
		Initial:  initial,
		Logger:   h.logger(),
	})
}

func submissionFrom(form authform.Form, v url.Values) authform.Submission {
	if form == authform.Signup {
		return authform.SignupSubmission{
			FullName:        v.Get("fullName"),
			Email:           v.Get("email"),
			Password:        v.Get("password"),
			ConfirmPassword: v.Get("confirmPassword"),
		}
	}
	return authform.LoginSubmission{Email: v.Get("email"), Password: v.Get("password")}
}

// Logout signs out through the identity service. On success the browser goes
// to the landing page; on failure nothing visible happens.
// POST /auth/logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		Redirect(w, r, PathLanding)
		return
	}

	nav := &responseNavigator{}
	dash := service.NewDashboard(service.DashboardOptions{
		Session:   h.Auth.Bind(*sess),
		Navigator: nav,
		Metrics:   h.Metrics,
		Logger:    h.logger(),
	})
	dash.SignOut(r.Context())

	target, navigated := nav.Target()
	if !navigated {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.clearCookie(w, r, SessionCookieName)
	Redirect(w, r, target)
}

// clearCookie expires a cookie, mirroring the attributes used to set it.
func (h *UIHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *UIHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}
