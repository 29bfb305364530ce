// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"net/http"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/pkg/slug"
	"github.com/snipstash/snipstash/pkg/uuidv7"
)

// Resolver maps upstream provider profiles to local principals.
//
// # Semantics
//
// First login creates the principal; every later login refreshes the profile
// fields from the provider snapshot. Principals are keyed internally by
// UUIDv7 and linked to the provider by the immutable GitHub account ID.
// The resolver never deletes principals.
type Resolver struct {
	principals PrincipalStore
}

// NewResolver creates a Resolver over the given principal store.
func NewResolver(principals PrincipalStore) *Resolver {
	return &Resolver{principals: principals}
}

/*
Resolve finds or creates the principal for a provider profile.

Description: Upsert keyed by the GitHub account ID. On first login a new
principal is minted with a UUIDv7 and a slug-normalized handle; on every
login the profile fields are overwritten with the provider snapshot so the
local copy never drifts stale.

Parameters:
  - context: context.Context
  - profile: *ProviderProfile

Returns:
  - *Principal: Created or refreshed principal
  - error: Persistence failures
*/
func (resolver *Resolver) Resolve(context context.Context, profile *ProviderProfile) (*Principal, error) {

	// 1. Look up by the immutable provider account ID
	existing, err := resolver.principals.GetByProviderID(context, profile.ID)
	if err != nil {
		if appError := apperr.As(err); appError == nil || appError.HTTPStatus != http.StatusNotFound {
			return nil, err
		}

		// 2a. First login: mint a new principal
		principal := &Principal{
			ID:              uuidv7.New(),
			GithubID:        profile.ID,
			IsProfilePublic: true,
		}
		applyProfile(principal, profile)

		if err := resolver.principals.Create(context, principal); err != nil {
			return nil, err
		}
		return principal, nil
	}

	// 2b. Returning login: refresh the profile snapshot
	applyProfile(existing, profile)
	if err := resolver.principals.Update(context, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// applyProfile copies the provider snapshot onto the principal.
func applyProfile(principal *Principal, profile *ProviderProfile) {
	principal.Username = slug.From(profile.Login)
	principal.Email = profile.Email
	principal.Name = profile.Name
	principal.AvatarURL = profile.AvatarURL
	principal.Bio = profile.Bio
	principal.Location = profile.Location
	principal.Blog = profile.Blog
	principal.Company = profile.Company
	principal.PublicRepos = profile.PublicRepos
	principal.Followers = profile.Followers
	principal.Following = profile.Following
}
