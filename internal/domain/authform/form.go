// Package authform models the login/signup dialog on the landing page: which
// form is showing, whether a submission is pending, and the error banner.
package authform

import (
	"fmt"
	"strings"
)

// Form identifies which of the two dialog forms is active.
type Form int

const (
	// Login is the initial form whenever the dialog opens.
	Login Form = iota
	Signup
)

// String returns the form's wire name ("login" or "signup").
func (f Form) String() string {
	switch f {
	case Signup:
		return "signup"
	default:
		return "login"
	}
}

// Other returns the form a toggle switches to.
func (f Form) Other() Form {
	if f == Signup {
		return Login
	}
	return Signup
}

// ParseForm maps a wire name to a Form. Unknown names are an error.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "login":
		return Login, nil
	case "signup":
		return Signup, nil
	default:
		return Login, fmt.Errorf("unknown form %q", s)
	}
}

// Phase is the dialog's coarse state.
type Phase int

const (
	Closed Phase = iota
	OpenLogin
	OpenSignup
)

// State is the dialog's transient UI state.
//
// IsSubmitting is true only while a submission is in flight. LastError is empty
// when no error is shown. Closing the dialog keeps ActiveForm.
type State struct {
	ActiveForm    Form
	IsSubmitting  bool
	LastError     string
	DialogVisible bool
}

// Phase projects the state onto Closed/OpenLogin/OpenSignup.
func (s State) Phase() Phase {
	switch {
	case !s.DialogVisible:
		return Closed
	case s.ActiveForm == Signup:
		return OpenSignup
	default:
		return OpenLogin
	}
}

// Open shows the dialog on the login form.
func (s State) Open() State {
	s.DialogVisible = true
	s.ActiveForm = Login
	s.LastError = ""
	return s
}

// Show switches the open dialog to form and clears the banner.
func (s State) Show(form Form) State {
	s.ActiveForm = form
	s.LastError = ""
	s.DialogVisible = true
	return s
}

// Toggle switches between login and signup.
func (s State) Toggle() State {
	return s.Show(s.ActiveForm.Other())
}

// Close hides the dialog. An in-flight submission keeps running.
func (s State) Close() State {
	s.DialogVisible = false
	return s
}

// Title is the dialog heading for the active form.
func (s State) Title() string {
	if s.ActiveForm == Signup {
		return "Create your account"
	}
	return "Login to CareCircle"
}

// SubmitLabel is the submit button text, reflecting the pending state.
func (s State) SubmitLabel() string {
	switch {
	case s.ActiveForm == Signup && s.IsSubmitting:
		return "Creating account..."
	case s.ActiveForm == Signup:
		return "Create Account"
	case s.IsSubmitting:
		return "Signing in..."
	default:
		return "Sign In"
	}
}
