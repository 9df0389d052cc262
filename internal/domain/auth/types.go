package auth

// Package auth contains domain-level types for identities and browser sessions.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"strings"
	"time"
)

// Credentials are the email/password pair submitted by the login and signup forms.
type Credentials struct {
	Email    string
	Password string
}

// Profile is the metadata attached to a new account at sign-up.
// Identity services store FullName under the "full_name" metadata key.
type Profile struct {
	FullName string
}

// Identity represents the principal reported by the identity service.
// Adapters map provider-specific payloads into this shape.
type Identity struct {
	UserID string
	Email  string
	// DisplayName is empty when the account has no name set.
	DisplayName string
}

// Grant is the result of a successful sign-in or sign-up.
// A sign-up awaiting email confirmation yields a Grant without an AccessToken.
type Grant struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // zero when the service did not report an expiry
}

// HasSession reports whether the grant carries tokens that open a session.
func (g Grant) HasSession() bool { return g.AccessToken != "" }

// Session is the server-side record we persist for a signed-in browser.
// ID is an opaque session identifier; the tokens never leave the server.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// RemoteError is a failure reported by the identity service.
// Message is human-readable and shown to the user verbatim.
type RemoteError struct {
	Message string
	Status  int    // HTTP status when the failure came from a response
	Code    string // service-specific error code, if any
	Cause   error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// UnreachableMessage is surfaced when the identity service cannot be contacted.
const UnreachableMessage = "Unable to reach the authentication service"

// NewRemoteError builds a RemoteError, falling back to a generic message when the
// service returned none.
func NewRemoteError(status int, code, message string) *RemoteError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Authentication failed"
	}
	return &RemoteError{Message: message, Status: status, Code: code}
}

// Unreachable wraps a transport failure.
func Unreachable(cause error) *RemoteError {
	return &RemoteError{Message: UnreachableMessage, Cause: cause}
}

// AsRemoteError extracts a RemoteError from err.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) && re != nil {
		return re, true
	}
	return nil, false
}
