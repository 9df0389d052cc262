package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/authform"
	"github.com/target/carecircle/internal/ports"
)

// SessionObserver is told about every successful sign-in or sign-up.
// Navigation after login belongs to observers; the gate itself never navigates.
type SessionObserver func(ctx context.Context, grant domainauth.Grant)

// AuthGateOptions groups dependencies for AuthGate.
type AuthGateOptions struct {
	Identity ports.IdentityService
	// Initial seeds the dialog state, e.g. from the form the browser posted.
	Initial authform.State
	Logger  *slog.Logger
}

// AuthGate is the landing screen controller: it owns the dialog state and
// submits credentials to the identity service.
//
// Submissions are not serialised. Overlapping submissions each apply their
// outcome on completion and the last to finish decides LastError. Results that
// arrive after Unmount are dropped.
type AuthGate struct {
	identity ports.IdentityService
	logger   *slog.Logger

	mu        sync.Mutex
	state     authform.State
	inFlight  int
	unmounted bool
	observers []SessionObserver
}

// NewAuthGate constructs an AuthGate.
func NewAuthGate(opts AuthGateOptions) *AuthGate {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := opts.Initial
	st.IsSubmitting = false
	return &AuthGate{identity: opts.Identity, logger: logger, state: st}
}

// State returns a snapshot of the dialog state.
func (g *AuthGate) State() authform.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CanSubmit reports whether the submit button should be enabled.
func (g *AuthGate) CanSubmit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.state.IsSubmitting
}

// OnSessionChange registers an observer for successful grants.
func (g *AuthGate) OnSessionChange(obs SessionObserver) {
	if obs == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, obs)
}

// Open shows the dialog on the login form ("Get Started").
func (g *AuthGate) Open() { g.apply(authform.State.Open) }

// Toggle switches between the login and signup forms.
func (g *AuthGate) Toggle() { g.apply(authform.State.Toggle) }

// Show switches the dialog to form.
func (g *AuthGate) Show(form authform.Form) {
	g.apply(func(s authform.State) authform.State { return s.Show(form) })
}

// Close hides the dialog without cancelling an in-flight submission.
func (g *AuthGate) Close() { g.apply(authform.State.Close) }

// Unmount tears the screen down; later completions no longer touch state.
func (g *AuthGate) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unmounted = true
}

func (g *AuthGate) apply(fn func(authform.State) authform.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unmounted {
		return
	}
	submitting := g.state.IsSubmitting
	g.state = fn(g.state)
	g.state.IsSubmitting = submitting
}

// Submit runs one submission to completion and returns the error shown in the
// banner, or nil on success. Validation failures never reach the identity service.
func (g *AuthGate) Submit(ctx context.Context, sub authform.Submission) error {
	if sub == nil {
		return errors.New("nil submission")
	}
	if !g.begin() {
		return nil
	}

	grant, err := g.run(ctx, sub)
	g.complete(err)

	if err == nil {
		g.notify(ctx, grant)
	}
	return err
}

func (g *AuthGate) run(ctx context.Context, sub authform.Submission) (domainauth.Grant, error) {
	if err := sub.Validate(); err != nil {
		return domainauth.Grant{}, err
	}
	switch s := sub.(type) {
	case authform.LoginSubmission:
		return g.identity.SignIn(ctx, s.Credentials())
	case authform.SignupSubmission:
		return g.identity.SignUp(ctx, s.Credentials(), s.Profile())
	default:
		return domainauth.Grant{}, errors.New("unsupported submission")
	}
}

func (g *AuthGate) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unmounted {
		return false
	}
	g.inFlight++
	g.state.IsSubmitting = true
	g.state.LastError = ""
	return true
}

func (g *AuthGate) complete(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight--
	if g.unmounted {
		return
	}
	if g.inFlight <= 0 {
		g.inFlight = 0
		g.state.IsSubmitting = false
	}
	if err != nil {
		g.state.LastError = bannerMessage(err)
		if !authform.IsValidation(err) {
			g.logger.Info("authentication rejected",
				slog.String("form", g.state.ActiveForm.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (g *AuthGate) notify(ctx context.Context, grant domainauth.Grant) {
	g.mu.Lock()
	if g.unmounted {
		g.mu.Unlock()
		return
	}
	observers := append([]SessionObserver(nil), g.observers...)
	g.mu.Unlock()

	for _, obs := range observers {
		obs(ctx, grant)
	}
}

// bannerMessage picks the user-facing text for err.
func bannerMessage(err error) string {
	var ve *authform.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if re, ok := domainauth.AsRemoteError(err); ok {
		return re.Message
	}
	return err.Error()
}
