// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/constants"
	"github.com/snipstash/snipstash/internal/platform/respond"
)

// # Authentication Middleware

// Middleware guards HTTP routes by verifying bearer tokens and resolving
// their sessions to principals.
//
// It performs no caching: every request re-verifies the token and re-reads
// the session, so revocation is effective on the very next request.
type Middleware struct {
	codec   *Codec
	manager *Manager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(codec *Codec, manager *Manager) *Middleware {
	return &Middleware{codec: codec, manager: manager}
}

/*
Required enforces authentication on the wrapped routes.

Description: Missing, malformed, expired, or revoked credentials yield 401.
A storage outage during session resolution yields 503 — a valid user must
never be bounced to the login screen because the database blinked.

Returns:
  - func(http.Handler) http.Handler: Chainable middleware
*/
func (middleware *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		principal, sessionID, err := middleware.authenticate(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		ctx := WithPrincipal(request.Context(), principal)
		ctx = withSessionID(ctx, sessionID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

/*
Optional resolves authentication when present but never requires it.

Description: Any authentication failure (no token, bad token, dead session)
simply proceeds anonymously. The single exception is a storage outage, which
still surfaces as 503: an anonymous fallback there would silently downgrade
authenticated requests during an incident.

Returns:
  - func(http.Handler) http.Handler: Chainable middleware
*/
func (middleware *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		principal, sessionID, err := middleware.authenticate(request)
		if err != nil {
			if appError := apperr.As(err); appError != nil && appError.HTTPStatus >= 500 {
				respond.Error(writer, request, err)
				return
			}
			// Anonymous path
			next.ServeHTTP(writer, request)
			return
		}

		ctx := WithPrincipal(request.Context(), principal)
		ctx = withSessionID(ctx, sessionID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// authenticate runs the full token → session → principal pipeline.
func (middleware *Middleware) authenticate(request *http.Request) (*Principal, string, error) {

	// 1. Extract the bearer token (header wins over cookie)
	token := extractToken(request)
	if token == "" {
		return nil, "", apperr.Unauthorized("Authentication required")
	}

	// 2. Verify signature and expiry, recover the session reference
	sessionID, err := middleware.codec.Verify(token)
	if err != nil {
		return nil, "", apperr.Unauthorized("Invalid or expired token")
	}

	// 3. Resolve the live session
	principal, err := middleware.manager.ResolveSession(request.Context(), sessionID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus >= 500 {
			return nil, "", err
		}
		return nil, "", apperr.Unauthorized("Session is invalid or expired")
	}

	return principal, sessionID, nil
}

// extractToken pulls the bearer token from the Authorization header or,
// failing that, from the auth cookie set for browser clients.
func extractToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := request.Cookie(constants.AuthTokenCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// # Request Helpers

// RequirePrincipal returns the authenticated principal or an Unauthorized error.
func RequirePrincipal(request *http.Request) (*Principal, error) {
	principal := PrincipalFrom(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return principal, nil
}

// sessionIDContextKey is the private context key for the current session ID.
type sessionIDContextKey struct{}

// withSessionID attaches the verified session ID to the context.
func withSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey{}, sessionID)
}

// SessionIDFrom extracts the current session ID, or "" for anonymous requests.
func SessionIDFrom(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionIDContextKey{}).(string); ok {
		return sessionID
	}
	return ""
}
