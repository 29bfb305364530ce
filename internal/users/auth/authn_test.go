// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/platform/constants"
	"github.com/snipstash/snipstash/internal/users/auth"
)

// authFixture bundles the wired middleware with a live session token.
type authFixture struct {
	middleware *auth.Middleware
	manager    *auth.Manager
	principal  *auth.Principal
	session    *auth.Session
	token      string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	manager, _, principal := newTestManager(t)
	codec := auth.NewCodec(testSecret, "snipstash.app")

	session, token, err := manager.CreateSession(context.Background(), principal.ID, "sealed")
	require.NoError(t, err)

	return &authFixture{
		middleware: auth.NewMiddleware(codec, manager),
		manager:    manager,
		principal:  principal,
		session:    session,
		token:      token,
	}
}

// echoPrincipal writes the authenticated username, or "anonymous".
func echoPrincipal(writer http.ResponseWriter, request *http.Request) {
	principal := auth.PrincipalFrom(request.Context())
	if principal == nil {
		_, _ = writer.Write([]byte("anonymous"))
		return
	}
	_, _ = writer.Write([]byte(principal.Username))
}

/*
TestMiddleware_Required walks the full 401/503/200 decision table.
*/
func TestMiddleware_Required(t *testing.T) {
	fixture := newAuthFixture(t)
	handler := fixture.middleware.Required(http.HandlerFunc(echoPrincipal))

	t.Run("missing_token_401", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("garbage_token_401", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer not.a.token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("valid_header_token_200", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+fixture.token)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "octocat", recorder.Body.String())
	})

	t.Run("valid_cookie_token_200", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.AuthTokenCookieName, Value: fixture.token})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("header_wins_over_cookie", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer bogus-header-token")
		request.AddCookie(&http.Cookie{Name: constants.AuthTokenCookieName, Value: fixture.token})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		// The bogus header is used (and fails) even though the cookie is valid.
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("revoked_session_401", func(t *testing.T) {
		revoked := newAuthFixture(t)
		require.NoError(t, revoked.manager.InvalidateSession(context.Background(), revoked.session.ID))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+revoked.token)
		recorder := httptest.NewRecorder()
		revoked.middleware.Required(http.HandlerFunc(echoPrincipal)).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("store_outage_503_not_401", func(t *testing.T) {
		principals := auth.NewMemoryPrincipalStore()
		codec := auth.NewCodec(testSecret, "snipstash.app")
		manager := auth.NewManager(&failingSessionStore{}, principals, codec, testLogger())
		middleware := auth.NewMiddleware(codec, manager)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+fixture.token)
		recorder := httptest.NewRecorder()
		middleware.Required(http.HandlerFunc(echoPrincipal)).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}

/*
TestMiddleware_Optional checks the anonymous pass-through and the one case
that still hard-fails (storage outage).
*/
func TestMiddleware_Optional(t *testing.T) {
	fixture := newAuthFixture(t)
	handler := fixture.middleware.Optional(http.HandlerFunc(echoPrincipal))

	t.Run("no_token_proceeds_anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "anonymous", recorder.Body.String())
	})

	t.Run("bad_token_proceeds_anonymous", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer junk")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "anonymous", recorder.Body.String())
	})

	t.Run("valid_token_attaches_principal", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+fixture.token)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "octocat", recorder.Body.String())
	})

	t.Run("store_outage_still_503", func(t *testing.T) {
		principals := auth.NewMemoryPrincipalStore()
		codec := auth.NewCodec(testSecret, "snipstash.app")
		manager := auth.NewManager(&failingSessionStore{}, principals, codec, testLogger())
		middleware := auth.NewMiddleware(codec, manager)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+fixture.token)
		recorder := httptest.NewRecorder()
		middleware.Optional(http.HandlerFunc(echoPrincipal)).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}
