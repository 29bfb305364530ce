// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

/*
Package auth implements the identity, session, and authentication layer.

It defines the core domain entities (Principal, Session) and the logic for
OAuth login, bearer-token verification, session lifecycle, and the HTTP
middleware that guards the rest of the API.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"context"
	"time"
)

// # Domain Entities

// Principal represents an authenticated identity on the Snipstash platform.
//
// A principal is created on first OAuth login and its profile fields are
// refreshed on every subsequent login. Principals are never deleted by this
// layer.
type Principal struct {
	ID               string    `json:"id"`
	GithubID         int64     `json:"github_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	Name             string    `json:"name,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	Location         string    `json:"location,omitempty"`
	Blog             string    `json:"blog,omitempty"`
	Company          string    `json:"company,omitempty"`
	PublicRepos      int       `json:"public_repos"`
	Followers        int       `json:"followers"`
	Following        int       `json:"following"`
	IsProfilePublic  bool      `json:"is_profile_public"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProviderProfile is the identity snapshot returned by the upstream OAuth
// provider after a successful code exchange.
type ProviderProfile struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Blog        string `json:"blog"`
	Company     string `json:"company"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// # Principal Context

// principalContextKey is the private context key for the authenticated principal.
type principalContextKey struct{}

// WithPrincipal returns a child context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFrom extracts the authenticated principal from the context.
// It returns nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *Principal {
	if principal, ok := ctx.Value(principalContextKey{}).(*Principal); ok {
		return principal
	}
	return nil
}
