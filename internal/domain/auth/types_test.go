package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	if (Session{}).Expired(now) {
		t.Fatalf("zero expiry should never expire")
	}
	if !(Session{ExpiresAt: now.Add(-time.Second)}).Expired(now) {
		t.Fatalf("expected expired")
	}
	if (Session{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("did not expect expired")
	}
}

func TestGrant_HasSession(t *testing.T) {
	if (Grant{Identity: Identity{UserID: "u"}}).HasSession() {
		t.Fatalf("grant without access token should not open a session")
	}
	if !(Grant{AccessToken: "tok"}).HasSession() {
		t.Fatalf("expected session")
	}
}

func TestRemoteError_MessageVerbatim(t *testing.T) {
	err := NewRemoteError(400, "invalid_grant", "Invalid login credentials")
	if err.Error() != "Invalid login credentials" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if NewRemoteError(500, "", "  ").Error() != "Authentication failed" {
		t.Fatalf("expected fallback message")
	}
}

func TestAsRemoteError_Wrapped(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("sign in: %w", Unreachable(cause))

	re, ok := AsRemoteError(wrapped)
	if !ok {
		t.Fatalf("expected remote error")
	}
	if re.Message != UnreachableMessage {
		t.Fatalf("unexpected message %q", re.Message)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if _, ok := AsRemoteError(cause); ok {
		t.Fatalf("plain errors are not remote errors")
	}
}
