package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Identity ports.IdentityService
	Sessions ports.SessionStore
	// SessionTTL is used when a grant carries no expiry, and caps longer ones.
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// AuthService turns identity grants into browser sessions and binds sessions
// back to the identity service for the dashboard.
type AuthService struct {
	identity ports.IdentityService
	sessions ports.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// ErrSessionExpired is returned for sessions past their expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrNoSession is returned when a grant carries no tokens (e.g. sign-up awaiting
// email confirmation).
var ErrNoSession = errors.New("grant does not open a session")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		identity: opts.Identity,
		sessions: opts.Sessions,
		ttl:      ttl,
		logger:   logger,
		now:      now,
	}
}

// Identity returns the identity service sessions are bound to.
func (s *AuthService) Identity() ports.IdentityService { return s.identity }

// OpenSession persists a session for a successful grant.
func (s *AuthService) OpenSession(ctx context.Context, grant domainauth.Grant) (domainauth.Session, error) {
	if !grant.HasSession() {
		return domainauth.Session{}, ErrNoSession
	}

	now := s.now()
	expires := now.Add(s.ttl)
	if !grant.ExpiresAt.IsZero() && grant.ExpiresAt.Before(expires) {
		expires = grant.ExpiresAt
	}

	session := domainauth.Session{
		ID:           generateSessionID(),
		UserID:       grant.Identity.UserID,
		Email:        grant.Identity.Email,
		DisplayName:  grant.Identity.DisplayName,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    expires,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout removes the local session only.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Bind returns the session gateway the dashboard uses for sess.
func (s *AuthService) Bind(sess domainauth.Session) *BoundSession {
	return &BoundSession{svc: s, session: sess}
}

// BoundSession reads the current identity on demand and signs the session out.
type BoundSession struct {
	svc     *AuthService
	session domainauth.Session
}

// Session returns the bound session record.
func (b *BoundSession) Session() domainauth.Session { return b.session }

// CurrentUser asks the identity service who owns the session.
func (b *BoundSession) CurrentUser(ctx context.Context) (domainauth.Identity, error) {
	return b.svc.identity.CurrentUser(ctx, b.session.AccessToken)
}

// SignOut ends the remote session, then removes the local one. A remote failure
// leaves the local session in place.
func (b *BoundSession) SignOut(ctx context.Context) error {
	if err := b.svc.identity.SignOut(ctx, b.session.AccessToken); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if err := b.svc.Logout(ctx, b.session.ID); err != nil {
		// the remote session is gone; a stale local record expires with its TTL
		b.svc.logger.Warn("failed to delete local session after sign out",
			slog.String("user_id", b.session.UserID),
			slog.Any("error", err),
		)
	}
	return nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.New().String()
}
