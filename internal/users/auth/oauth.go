// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/constants"
)

// # OAuth Exchange

// Exchanger abstracts the upstream identity provider.
//
// The HTTP handlers and the resolver depend only on this interface, which
// keeps the end-to-end login flow testable without network access.
type Exchanger interface {

	/*
		AuthCodeURL builds the provider's authorization URL for the given
		anti-CSRF state value.

		Parameters:
		  - state: string

		Returns:
		  - string: Fully-qualified provider URL to redirect the browser to
	*/
	AuthCodeURL(state string) string

	/*
		Exchange swaps an authorization code for the provider's access token
		and fetches the account profile with it.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - *ProviderProfile: Upstream identity snapshot
		  - string: Raw provider access token (caller seals it before storage)
		  - error: apperr.UpstreamExchangeFailed on any provider failure
	*/
	Exchange(context context.Context, code string) (*ProviderProfile, string, error)
}

// GithubExchanger implements Exchanger against the GitHub OAuth2 API.
type GithubExchanger struct {
	config *oauth2.Config

	// apiBaseURL points at api.github.com in production and at an httptest
	// server in tests.
	apiBaseURL string
}

// NewGithubExchanger creates a GitHub-backed Exchanger.
func NewGithubExchanger(clientID, clientSecret, redirectURL string) *GithubExchanger {
	return &GithubExchanger{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: "https://api.github.com",
	}
}

// WithEndpoints overrides the provider token endpoint and API base URL.
// Intended for tests.
func (exchanger *GithubExchanger) WithEndpoints(endpoint oauth2.Endpoint, apiBaseURL string) *GithubExchanger {
	exchanger.config.Endpoint = endpoint
	exchanger.apiBaseURL = apiBaseURL
	return exchanger
}

// AuthCodeURL builds the GitHub authorization URL for the given state.
func (exchanger *GithubExchanger) AuthCodeURL(state string) string {
	return exchanger.config.AuthCodeURL(state)
}

/*
Exchange swaps the authorization code and fetches the GitHub profile.

Description: The whole round trip is bounded by UpstreamExchangeTimeout so a
hung provider can never hold a login request open. Every failure along the
way (token exchange, profile fetch, decode) maps to
apperr.UpstreamExchangeFailed — the caller surfaces it as a login failure,
never a session failure.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - *ProviderProfile: GitHub account snapshot
  - string: Raw GitHub access token
  - error: apperr.UpstreamExchangeFailed
*/
func (exchanger *GithubExchanger) Exchange(ctx context.Context, code string) (*ProviderProfile, string, error) {

	// 1. Bound the whole exchange
	ctx, cancel := context.WithTimeout(ctx, constants.UpstreamExchangeTimeout)
	defer cancel()

	// 2. Swap the code for an access token
	token, err := exchanger.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperr.UpstreamExchangeFailed(fmt.Errorf("github_code_exchange_failed: %w", err))
	}

	// 3. Fetch the account profile with the fresh token
	client := exchanger.config.Client(ctx, token)
	response, err := client.Get(exchanger.apiBaseURL + "/user")
	if err != nil {
		return nil, "", apperr.UpstreamExchangeFailed(fmt.Errorf("github_profile_fetch_failed: %w", err))
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, "", apperr.UpstreamExchangeFailed(fmt.Errorf("github_profile_fetch_status_%d", response.StatusCode))
	}

	profile := &ProviderProfile{}
	if err := json.NewDecoder(response.Body).Decode(profile); err != nil {
		return nil, "", apperr.UpstreamExchangeFailed(fmt.Errorf("github_profile_decode_failed: %w", err))
	}

	if profile.ID == 0 || profile.Login == "" {
		return nil, "", apperr.UpstreamExchangeFailed(fmt.Errorf("github_profile_incomplete"))
	}

	return profile, token.AccessToken, nil
}
