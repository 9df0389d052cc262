package ports

// Package ports defines interfaces (hexagonal ports) for identity, sessions and providers.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/carecircle"
)

// IdentityService is the remote auth collaborator. Every call is a network round
// trip; failures the user should see are *domainauth.RemoteError values.
type IdentityService interface {
	// SignIn verifies an email/password pair.
	SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error)

	// SignUp registers a new account carrying profile as metadata.
	SignUp(ctx context.Context, creds domainauth.Credentials, profile domainauth.Profile) (domainauth.Grant, error)

	// SignOut ends the remote session identified by accessToken.
	SignOut(ctx context.Context, accessToken string) error

	// CurrentUser looks up the identity behind accessToken.
	CurrentUser(ctx context.Context, accessToken string) (domainauth.Identity, error)
}

// SessionStore persists and retrieves browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Navigator transitions the browser to another screen.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// ProviderDirectory lists the care providers shown on the dashboard, in display order.
type ProviderDirectory interface {
	List(ctx context.Context) ([]carecircle.CareProvider, error)
}
