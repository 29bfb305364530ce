// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/constants"
	"github.com/snipstash/snipstash/internal/platform/sec"
	"github.com/snipstash/snipstash/internal/users/auth"
)

// stubExchanger satisfies auth.Exchanger without network access.
type stubExchanger struct {
	profile *auth.ProviderProfile
	fail    bool
}

func (s *stubExchanger) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (s *stubExchanger) Exchange(_ context.Context, code string) (*auth.ProviderProfile, string, error) {
	if s.fail || code == "" {
		return nil, "", apperr.UpstreamExchangeFailed(errStoreDown)
	}
	return s.profile, "gho_test_access_token", nil
}

// loginFlow bundles everything needed to drive the HTTP surface in-memory.
type loginFlow struct {
	router    http.Handler
	exchanger *stubExchanger
	sessions  *auth.MemorySessionStore
}

func newLoginFlow(t *testing.T) *loginFlow {
	t.Helper()

	sessions := auth.NewMemorySessionStore()
	principals := auth.NewMemoryPrincipalStore()
	codec := auth.NewCodec(testSecret, "snipstash.app")
	manager := auth.NewManager(sessions, principals, codec, testLogger())
	resolver := auth.NewResolver(principals)
	middleware := auth.NewMiddleware(codec, manager)

	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	exchanger := &stubExchanger{
		profile: &auth.ProviderProfile{ID: 42, Login: "octocat", Name: "The Octocat"},
	}

	handler := auth.NewHandler(
		exchanger, resolver, manager, sealer, middleware,
		"http://frontend.test", false,
	)

	return &loginFlow{
		router:    handler.Routes(),
		exchanger: exchanger,
		sessions:  sessions,
	}
}

// startLogin calls GET /login and returns the state cookie.
func (flow *loginFlow) startLogin(t *testing.T) *http.Cookie {
	t.Helper()

	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.OAuthStateCookieName {
			return cookie
		}
	}
	t.Fatal("state cookie not set")
	return nil
}

// completeLogin drives login + callback and returns the auth cookie.
func (flow *loginFlow) completeLogin(t *testing.T) *http.Cookie {
	t.Helper()

	state := flow.startLogin(t)

	request := httptest.NewRequest(http.MethodGet, "/callback?code=good&state="+state.Value, nil)
	request.AddCookie(state)
	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, "http://frontend.test/dashboard?auth=success", recorder.Header().Get("Location"))

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.AuthTokenCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("auth cookie not set")
	return nil
}

/*
TestLoginEndpoint verifies state generation and the provider URL handoff.
*/
func TestLoginEndpoint(t *testing.T) {
	flow := newLoginFlow(t)

	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	state := envelope.Data[auth.FieldState]
	assert.NotEmpty(t, state)
	assert.True(t, strings.Contains(envelope.Data[auth.FieldAuthURL], state))

	// The cookie pins the same state the client was handed.
	cookies := recorder.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, state, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

/*
TestCallback_FullFlow drives login → callback → /me → logout end to end.
*/
func TestCallback_FullFlow(t *testing.T) {
	flow := newLoginFlow(t)
	authCookie := flow.completeLogin(t)

	// /me returns the resolved principal.
	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	request.AddCookie(authCookie)
	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data auth.Principal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "octocat", envelope.Data.Username)
	assert.Equal(t, int64(42), envelope.Data.GithubID)

	// Logout kills the session; /me now rejects the same cookie.
	request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	request.AddCookie(authCookie)
	recorder = httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/me", nil)
	request.AddCookie(authCookie)
	recorder = httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestCallback_Failures covers the state and exchange failure redirects.
*/
func TestCallback_Failures(t *testing.T) {
	t.Run("state_mismatch", func(t *testing.T) {
		flow := newLoginFlow(t)
		state := flow.startLogin(t)

		request := httptest.NewRequest(http.MethodGet, "/callback?code=good&state=tampered", nil)
		request.AddCookie(state)
		recorder := httptest.NewRecorder()
		flow.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusFound, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Location"), "error=invalid_state")
		assert.Zero(t, flow.sessions.Len())
	})

	t.Run("missing_state_cookie", func(t *testing.T) {
		flow := newLoginFlow(t)

		request := httptest.NewRequest(http.MethodGet, "/callback?code=good&state=whatever", nil)
		recorder := httptest.NewRecorder()
		flow.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusFound, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Location"), "error=invalid_state")
	})

	t.Run("upstream_exchange_failure", func(t *testing.T) {
		flow := newLoginFlow(t)
		flow.exchanger.fail = true
		state := flow.startLogin(t)

		request := httptest.NewRequest(http.MethodGet, "/callback?code=good&state="+state.Value, nil)
		request.AddCookie(state)
		recorder := httptest.NewRecorder()
		flow.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusFound, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Location"), "error=exchange_failed")
		assert.Zero(t, flow.sessions.Len())
	})
}

/*
TestLogoutAll verifies that every session of the principal dies at once.
*/
func TestLogoutAll(t *testing.T) {
	flow := newLoginFlow(t)

	first := flow.completeLogin(t)
	second := flow.completeLogin(t)
	require.Equal(t, 2, flow.sessions.Len())

	request := httptest.NewRequest(http.MethodPost, "/logout-all", nil)
	request.AddCookie(first)
	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, flow.sessions.Len())

	// Both cookies are now dead.
	for _, cookie := range []*http.Cookie{first, second} {
		request := httptest.NewRequest(http.MethodGet, "/me", nil)
		request.AddCookie(cookie)
		recorder := httptest.NewRecorder()
		flow.router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	}
}

/*
TestRotateEndpoint verifies that rotation swaps the session under the cookie.
*/
func TestRotateEndpoint(t *testing.T) {
	flow := newLoginFlow(t)
	oldCookie := flow.completeLogin(t)

	request := httptest.NewRequest(http.MethodPost, "/rotate", nil)
	request.AddCookie(oldCookie)
	recorder := httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var newCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.AuthTokenCookieName {
			newCookie = cookie
		}
	}
	require.NotNil(t, newCookie)
	assert.NotEqual(t, oldCookie.Value, newCookie.Value)

	// The old cookie's session is gone, the new one works.
	request = httptest.NewRequest(http.MethodGet, "/me", nil)
	request.AddCookie(oldCookie)
	recorder = httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/me", nil)
	request.AddCookie(newCookie)
	recorder = httptest.NewRecorder()
	flow.router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
