package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrNoIDToken = errors.New("token response carries no id_token")

// GoogleOAuth runs the authorization code flow against Google and yields
// the ID token the identity provider accepts.
type GoogleOAuth struct {
	config *oauth2.Config
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
	}
}

// WithEndpoint replaces the Google endpoint, for tests and proxies.
func (g *GoogleOAuth) WithEndpoint(e oauth2.Endpoint) *GoogleOAuth {
	cfg := *g.config
	cfg.Endpoint = e
	return &GoogleOAuth{config: &cfg}
}

// AuthURL returns the consent page URL for state.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a Google ID token.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}
