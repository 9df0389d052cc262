// Package hostedauth is an IdentityService backed by a hosted, GoTrue-compatible
// auth API (password sign-in, sign-up with user metadata, logout, current user).
package hostedauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/target/carecircle/internal/adapters/claims"
	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.IdentityService = (*Client)(nil)

// DefaultDisplayNameExpr reads the full_name stored at sign-up.
const DefaultDisplayNameExpr = "user_metadata.full_name"

// maxBody caps how much of a response we read.
const maxBody = 1 << 20

// Config holds configuration for the hosted identity client.
type Config struct {
	// BaseURL is the auth API root, e.g. https://xyz.supabase.co/auth/v1.
	BaseURL string
	// APIKey is the project's public (anon) key, sent as the apikey header.
	APIKey          string
	DisplayNameExpr string
	HTTPClient      *http.Client // Optional, defaults to a client with a 10s timeout
	Now             func() time.Time
}

// Client implements ports.IdentityService over the hosted auth REST API.
type Client struct {
	base  *url.URL
	http  *http.Client
	names *claims.NameExtractor
	now   func() time.Time
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("hosted auth URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("hosted auth API key is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid hosted auth URL %q", cfg.BaseURL)
	}

	expr := cfg.DisplayNameExpr
	if strings.TrimSpace(expr) == "" {
		expr = DefaultDisplayNameExpr
	}
	names, err := claims.NewNameExtractor(expr)
	if err != nil {
		return nil, err
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// every request carries the project key; bearer tokens are layered on per call
	withKey := *hc
	withKey.Transport = &apiKeyTransport{key: cfg.APIKey, next: transportOf(hc)}

	return &Client{base: base, http: &withKey, names: names, now: now}, nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	raw, err := c.do(ctx, c.http, http.MethodPost, "token?grant_type=password", body)
	if err != nil {
		return domainauth.Grant{}, err
	}
	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return domainauth.Grant{}, fmt.Errorf("decode token response: %w", err)
	}
	return c.grantFrom(tok), nil
}

// SignUp creates an account with full_name metadata. When the service requires
// email confirmation the returned Grant has no tokens.
func (c *Client) SignUp(ctx context.Context, creds domainauth.Credentials, profile domainauth.Profile) (domainauth.Grant, error) {
	body := signUpRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Data:     map[string]string{"full_name": profile.FullName},
	}
	raw, err := c.do(ctx, c.http, http.MethodPost, "signup", body)
	if err != nil {
		return domainauth.Grant{}, err
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return domainauth.Grant{}, fmt.Errorf("decode signup response: %w", err)
	}
	if tok.AccessToken != "" {
		return c.grantFrom(tok), nil
	}
	// unconfirmed sign-up: the body is the user document itself
	return domainauth.Grant{Identity: c.identityFrom(raw)}, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, c.bearer(ctx, accessToken), http.MethodPost, "logout", nil)
	return err
}

// CurrentUser fetches the user document for accessToken.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	raw, err := c.do(ctx, c.bearer(ctx, accessToken), http.MethodGet, "user", nil)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return c.identityFrom(raw), nil
}

// bearer returns an HTTP client that adds "Authorization: Bearer <token>".
func (c *Client) bearer(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func (c *Client) endpoint(path string) string {
	rel, _ := url.Parse(path)
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + rel.Path
	u.RawQuery = rel.RawQuery
	return u.String()
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, domainauth.Unreachable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, domainauth.Unreachable(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) grantFrom(tok tokenResponse) domainauth.Grant {
	g := domainauth.Grant{
		Identity:     c.identityFrom(tok.User),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	switch {
	case tok.ExpiresAt > 0:
		g.ExpiresAt = time.Unix(tok.ExpiresAt, 0)
	case tok.ExpiresIn > 0:
		g.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return g
}

func (c *Client) identityFrom(rawUser json.RawMessage) domainauth.Identity {
	if len(rawUser) == 0 {
		return domainauth.Identity{}
	}
	var u userDocument
	_ = json.Unmarshal(rawUser, &u)
	return domainauth.Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: c.names.ExtractJSON(rawUser),
	}
}

type signUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    int64           `json:"expires_at"`
	User         json.RawMessage `json:"user"`
}

type userDocument struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// errorBody covers the shapes the service uses across endpoints and versions.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Code             any    `json:"code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// decodeError turns a failed response into a RemoteError carrying the service's
// message verbatim.
func decodeError(status int, raw []byte) error {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return domainauth.NewRemoteError(status, "", http.StatusText(status))
	}
	msg := firstNonEmpty(eb.ErrorDescription, eb.Msg, eb.Message, eb.Error)
	code := eb.ErrorCode
	if code == "" {
		if s, ok := eb.Code.(string); ok {
			code = s
		} else {
			code = eb.Error
		}
	}
	return domainauth.NewRemoteError(status, code, msg)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.next.RoundTrip(r)
}

func transportOf(hc *http.Client) http.RoundTripper {
	if hc.Transport != nil {
		return hc.Transport
	}
	return http.DefaultTransport
}
