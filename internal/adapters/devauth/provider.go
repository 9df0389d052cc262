package devauth

// Package devauth provides an in-memory IdentityService for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.IdentityService = (*Provider)(nil)

// MinPasswordLength mirrors the hosted service's default password policy.
const MinPasswordLength = 6

// User seeds an account into the directory.
type User struct {
	Email    string
	Password string
	FullName string
}

// Config controls the dev identity directory.
type Config struct {
	Users           []User
	SessionDuration time.Duration // default 8h when zero
	// BcryptCost defaults to bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
	Now        func() time.Time
}

type account struct {
	id       string
	email    string
	fullName string
	hash     []byte
}

type issuedToken struct {
	email     string
	expiresAt time.Time
}

// Provider is a bcrypt-backed user directory that issues opaque access tokens.
// Accounts and tokens live only as long as the process.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]issuedToken

	sessionDuration time.Duration
	cost            int
	now             func() time.Time
}

// NewProvider constructs a dev directory and seeds cfg.Users.
func NewProvider(cfg Config) (*Provider, error) {
	p := &Provider{
		accounts:        make(map[string]*account),
		tokens:          make(map[string]issuedToken),
		sessionDuration: cfg.SessionDuration,
		cost:            cfg.BcryptCost,
		now:             cfg.Now,
	}
	if p.sessionDuration <= 0 {
		p.sessionDuration = 8 * time.Hour
	}
	if p.cost == 0 {
		p.cost = bcrypt.DefaultCost
	}
	if p.now == nil {
		p.now = time.Now
	}
	for _, u := range cfg.Users {
		if _, err := p.register(u.Email, u.Password, u.FullName); err != nil {
			return nil, fmt.Errorf("dev auth: seed %s: %w", u.Email, err)
		}
	}
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) register(email, password, fullName string) (*account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domainauth.NewRemoteError(http.StatusBadRequest, "validation_failed", "Unable to validate email address: invalid format")
	}
	if len(password) < MinPasswordLength {
		return nil, domainauth.NewRemoteError(http.StatusUnprocessableEntity, "weak_password",
			fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return nil, domainauth.NewRemoteError(http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
	}
	acct := &account{id: uuid.NewString(), email: email, fullName: strings.TrimSpace(fullName), hash: hash}
	p.accounts[email] = acct
	return acct, nil
}

// SignIn checks the password against the stored bcrypt hash.
func (p *Provider) SignIn(_ context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	p.mu.Lock()
	acct, ok := p.accounts[normalizeEmail(creds.Email)]
	p.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(creds.Password)) != nil {
		return domainauth.Grant{}, domainauth.NewRemoteError(http.StatusBadRequest, "invalid_credentials", "Invalid login credentials")
	}
	return p.issue(acct)
}

// SignUp registers a new account and signs it in immediately.
func (p *Provider) SignUp(_ context.Context, creds domainauth.Credentials, profile domainauth.Profile) (domainauth.Grant, error) {
	acct, err := p.register(creds.Email, creds.Password, profile.FullName)
	if err != nil {
		return domainauth.Grant{}, err
	}
	return p.issue(acct)
}

// SignOut forgets accessToken.
func (p *Provider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tokens[accessToken]; !ok {
		return errInvalidToken()
	}
	delete(p.tokens, accessToken)
	return nil
}

// CurrentUser resolves accessToken to its account.
func (p *Provider) CurrentUser(_ context.Context, accessToken string) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tok, ok := p.tokens[accessToken]
	if !ok || !p.now().Before(tok.expiresAt) {
		delete(p.tokens, accessToken)
		return domainauth.Identity{}, errInvalidToken()
	}
	acct, ok := p.accounts[tok.email]
	if !ok {
		return domainauth.Identity{}, errInvalidToken()
	}
	return identityOf(acct), nil
}

func (p *Provider) issue(acct *account) (domainauth.Grant, error) {
	access, err := randomString(32)
	if err != nil {
		return domainauth.Grant{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := randomString(32)
	if err != nil {
		return domainauth.Grant{}, fmt.Errorf("generate refresh token: %w", err)
	}
	expiresAt := p.now().Add(p.sessionDuration)

	p.mu.Lock()
	p.tokens[access] = issuedToken{email: acct.email, expiresAt: expiresAt}
	p.mu.Unlock()

	return domainauth.Grant{
		Identity:     identityOf(acct),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func identityOf(acct *account) domainauth.Identity {
	return domainauth.Identity{UserID: acct.id, Email: acct.email, DisplayName: acct.fullName}
}

func errInvalidToken() error {
	return domainauth.NewRemoteError(http.StatusUnauthorized, "bad_jwt", "invalid JWT: unable to parse or verify signature")
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("length must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
