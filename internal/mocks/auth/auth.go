package auth

// Package auth contains simple hand-written test doubles for identity and session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityService   = (*MockIdentityService)(nil)
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.Navigator         = (*RecordingNavigator)(nil)
	_ ports.ProviderDirectory = (*StaticDirectory)(nil)
)

// MockIdentityService simulates the remote identity service and counts calls.
// Unset funcs fall back to a deterministic default user.
type MockIdentityService struct {
	SignInFunc      func(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error)
	SignUpFunc      func(ctx context.Context, creds domainauth.Credentials, profile domainauth.Profile) (domainauth.Grant, error)
	SignOutFunc     func(ctx context.Context, accessToken string) error
	CurrentUserFunc func(ctx context.Context, accessToken string) (domainauth.Identity, error)

	DefaultUser domainauth.Identity

	mu     sync.Mutex
	calls  map[string]int
	tokens []string
}

// NewMockIdentityService creates a MockIdentityService with sensible defaults.
func NewMockIdentityService() *MockIdentityService {
	return &MockIdentityService{
		DefaultUser: domainauth.Identity{
			UserID:      "mock-user-1",
			Email:       "mock.user@example.com",
			DisplayName: "Mock User",
		},
	}
}

func (m *MockIdentityService) record(op, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	if token != "" {
		m.tokens = append(m.tokens, token)
	}
}

// Calls returns how many times op ("SignIn", "SignUp", "SignOut", "CurrentUser") ran.
func (m *MockIdentityService) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MockIdentityService) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Tokens returns the access tokens passed to SignOut and CurrentUser, in call order.
func (m *MockIdentityService) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

func (m *MockIdentityService) grant(id domainauth.Identity) domainauth.Grant {
	return domainauth.Grant{
		Identity:     id,
		AccessToken:  "access-" + id.UserID,
		RefreshToken: "refresh-" + id.UserID,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func (m *MockIdentityService) user() domainauth.Identity {
	if m.DefaultUser.UserID == "" {
		return domainauth.Identity{UserID: "mock-user-1", Email: "mock.user@example.com", DisplayName: "Mock User"}
	}
	return m.DefaultUser
}

func (m *MockIdentityService) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	m.record("SignIn", "")
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, creds)
	}
	id := m.user()
	id.Email = creds.Email
	return m.grant(id), nil
}

func (m *MockIdentityService) SignUp(
	ctx context.Context,
	creds domainauth.Credentials,
	profile domainauth.Profile,
) (domainauth.Grant, error) {
	m.record("SignUp", "")
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, creds, profile)
	}
	id := m.user()
	id.Email = creds.Email
	id.DisplayName = profile.FullName
	return m.grant(id), nil
}

func (m *MockIdentityService) SignOut(ctx context.Context, accessToken string) error {
	m.record("SignOut", accessToken)
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}

func (m *MockIdentityService) CurrentUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	m.record("CurrentUser", accessToken)
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, accessToken)
	}
	return m.user(), nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// RecordingNavigator records every navigation.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Paths returns the recorded navigation targets.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// StaticDirectory serves a fixed provider list, or Err when set.
type StaticDirectory struct {
	Providers []carecircle.CareProvider
	Err       error
}

func (d *StaticDirectory) List(context.Context) ([]carecircle.CareProvider, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return append([]carecircle.CareProvider(nil), d.Providers...), nil
}
