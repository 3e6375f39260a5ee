package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ProviderOIDC names the external OpenID Connect provider
const ProviderOIDC = "oidc"

// OIDCConfig configures the external identity provider
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OIDCVerifier verifies ID tokens of an external provider and drives the
// authorization code login flow
type OIDCVerifier struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewOIDCVerifier discovers the provider at cfg.IssuerURL
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if cfg.IssuerURL == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("oidc issuer url and client id are required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &OIDCVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
		},
	}, nil
}

// Verify implements IdentityVerifier for raw ID tokens
func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return identityFromClaims(idToken.Subject, claims), nil
}

// AuthCodeURL returns the provider login URL for the given state
func (v *OIDCVerifier) AuthCodeURL(state string) string {
	return v.oauth2Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified ID token. The raw
// token is returned so it can be used as the session token.
func (v *OIDCVerifier) Exchange(ctx context.Context, code string) (string, *Identity, error) {
	if code == "" {
		return "", nil, fmt.Errorf("missing authorization code")
	}

	oauth2Token, err := v.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return "", nil, fmt.Errorf("missing id_token in response")
	}

	identity, err := v.Verify(ctx, rawIDToken)
	if err != nil {
		return "", nil, err
	}
	return rawIDToken, identity, nil
}

func identityFromClaims(subject string, claims map[string]interface{}) *Identity {
	str := func(key string) string {
		if s, ok := claims[key].(string); ok {
			return s
		}
		return ""
	}

	name := str("name")
	if name == "" {
		name = strings.TrimSpace(str("given_name") + " " + str("family_name"))
	}
	return &Identity{
		Subject:  subject,
		Email:    strings.ToLower(str("email")),
		Name:     name,
		Provider: ProviderOIDC,
	}
}
