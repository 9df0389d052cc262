package oidc

// Package oidc provides an IdentityService backed by an OIDC provider's
// resource-owner password grant.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/target/carecircle/internal/adapters/claims"
	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.IdentityService = (*Provider)(nil)

// SignUpUnsupportedMessage is returned by SignUp; OIDC has no registration endpoint.
const SignUpUnsupportedMessage = "sign up is not supported by this identity provider"

// Provider implements ports.IdentityService using OIDC/OAuth2.
type Provider struct {
	config        *oauth2.Config
	revocationURL string
	httpClient    *http.Client

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	names        *claims.NameExtractor
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID        string
	ClientSecret    string
	Scope           string
	DiscoveryURL    string
	DisplayNameExpr string
	RevocationURL   string
	HTTPClient      *http.Client // Optional, defaults to a client with a 10s timeout
}

// NewProvider fetches the discovery document and builds a Provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	names, err := claims.NewNameExtractor(firstNonEmpty(config.DisplayNameExpr, "name"))
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscovery(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       strings.Fields(config.Scope),
			Endpoint:     op.Endpoint(),
		},
		revocationURL: config.RevocationURL,
		httpClient:    httpClient,
		oidcProvider:  op,
		verifier:      op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		names:         names,
	}, nil
}

func issuerFromDiscovery(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return issuer
}

// SignIn performs the password grant and reads identity from the ID token,
// falling back to the UserInfo endpoint.
func (p *Provider) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	ctx = gooidc.ClientContext(ctx, p.httpClient)
	tok, err := p.config.PasswordCredentialsToken(ctx, creds.Email, creds.Password)
	if err != nil {
		return domainauth.Grant{}, mapTokenError(err)
	}

	id, err := p.identityFromToken(ctx, tok)
	if err != nil {
		return domainauth.Grant{}, err
	}
	return domainauth.Grant{
		Identity:     id,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// SignUp is not available through OIDC.
func (p *Provider) SignUp(context.Context, domainauth.Credentials, domainauth.Profile) (domainauth.Grant, error) {
	return domainauth.Grant{}, domainauth.NewRemoteError(http.StatusNotImplemented, "signup_unsupported", SignUpUnsupportedMessage)
}

// SignOut revokes the access token when a revocation endpoint is configured.
// Without one there is nothing to revoke remotely.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	if p.revocationURL == "" {
		return nil
	}
	form := url.Values{"token": {accessToken}, "token_type_hint": {"access_token"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(p.config.ClientID), url.QueryEscape(p.config.ClientSecret))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domainauth.Unreachable(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= http.StatusBadRequest {
		var eb struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(body, &eb)
		return domainauth.NewRemoteError(resp.StatusCode, eb.Error, firstNonEmpty(eb.ErrorDescription, eb.Error))
	}
	return nil
}

// CurrentUser resolves the identity behind accessToken via UserInfo.
func (p *Provider) CurrentUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	ctx = gooidc.ClientContext(ctx, p.httpClient)
	doc, err := p.userInfo(ctx, accessToken)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return p.identityFromClaims(doc), nil
}

func (p *Provider) identityFromToken(ctx context.Context, tok *oauth2.Token) (domainauth.Identity, error) {
	if rawID, ok := tok.Extra("id_token").(string); ok && rawID != "" {
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
		}
		var doc map[string]any
		if err := idTok.Claims(&doc); err != nil {
			return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
		}
		id := p.identityFromClaims(doc)
		if id.Email != "" {
			return id, nil
		}
	}

	doc, err := p.userInfo(ctx, tok.AccessToken)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return p.identityFromClaims(doc), nil
}

func (p *Provider) userInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		re := domainauth.NewRemoteError(http.StatusUnauthorized, "", "Unable to load your profile")
		re.Cause = err
		return nil, re
	}
	var doc map[string]any
	if err := ui.Claims(&doc); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return doc, nil
}

func (p *Provider) identityFromClaims(doc map[string]any) domainauth.Identity {
	sub, _ := doc["sub"].(string)
	email, _ := doc["email"].(string)
	return domainauth.Identity{
		UserID:      sub,
		Email:       email,
		DisplayName: p.names.Extract(doc),
	}
}

// mapTokenError surfaces the provider's error_description verbatim.
func mapTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return domainauth.Unreachable(err)
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	msg := re.ErrorDescription
	if msg == "" && re.ErrorCode == "invalid_grant" {
		msg = "Invalid login credentials"
	}
	out := domainauth.NewRemoteError(status, re.ErrorCode, msg)
	out.Cause = err
	return out
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
