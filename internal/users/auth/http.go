// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/constants"
	"github.com/snipstash/snipstash/internal/platform/respond"
	"github.com/snipstash/snipstash/internal/platform/sec"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP surface.
//
// # Scope
//
// This handler manages the OAuth login flow, the session self-service
// endpoints (logout, logout-all, rotate), and the identity echo (/me).
// It is strictly responsible for transport concerns (status codes, cookies,
// redirects); all policy lives in the Manager and Resolver.
type Handler struct {
	exchanger  Exchanger
	resolver   *Resolver
	manager    *Manager
	sealer     *sec.Sealer
	middleware *Middleware

	frontendURL   string
	secureCookies bool
}

// NewHandler constructs the auth [Handler] with its collaborators.
func NewHandler(
	exchanger Exchanger,
	resolver *Resolver,
	manager *Manager,
	sealer *sec.Sealer,
	middleware *Middleware,
	frontendURL string,
	secureCookies bool,
) *Handler {
	return &Handler{
		exchanger:     exchanger,
		resolver:      resolver,
		manager:       manager,
		sealer:        sealer,
		middleware:    middleware,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
	}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - GET  /login      : Starts the OAuth flow (state cookie + provider URL).
//   - GET  /callback   : Completes the flow and establishes a session.
//   - GET  /me         : Returns the authenticated principal.
//   - POST /logout     : Invalidates the current session.
//   - POST /logout-all : Invalidates every session of the principal.
//   - POST /rotate     : Replaces the current session with a fresh one.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/login", handler.login)
	router.Get("/callback", handler.callback)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.middleware.Required)
		r.Get("/me", handler.me)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
		r.Post("/rotate", handler.rotate)
	})

	return router
}

/*
login starts the OAuth flow.

GET /api/v1/auth/login

Description: Generates an unguessable anti-CSRF state, pins it in a
short-lived HttpOnly cookie, and hands the client the provider URL to
redirect to.

Response:
  - 200: {auth_url, state}
  - 500: State generation failure (entropy exhaustion)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {

	// 1. Mint the anti-CSRF state
	state, err := newState()
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// 2. Pin it so the callback can verify the round trip
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.OAuthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(constants.OAuthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respond.OK(writer, map[string]string{
		FieldAuthURL: handler.exchanger.AuthCodeURL(state),
		FieldState:   state,
	})
}

/*
callback completes the OAuth flow.

GET /api/v1/auth/callback?code=...&state=...

Description: Verifies the state round trip, exchanges the code upstream,
resolves the principal, creates a session, and sets the auth cookie. The
browser is always redirected back to the frontend — success and failure are
communicated via query parameters, matching what a SPA can actually handle
on a top-level navigation.
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {

	// 1. State round-trip check (cookie vs query)
	stateCookie, err := request.Cookie(constants.OAuthStateCookieName)
	queryState := request.URL.Query().Get(FieldState)
	if err != nil || queryState == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(queryState)) != 1 {
		handler.redirectWithError(writer, request, "invalid_state")
		return
	}

	// The state is single-use regardless of outcome.
	handler.clearStateCookie(writer)

	code := request.URL.Query().Get(FieldCode)
	if code == "" {
		handler.redirectWithError(writer, request, "missing_code")
		return
	}

	// 2. Exchange the code and fetch the upstream profile
	profile, credential, err := handler.exchanger.Exchange(request.Context(), code)
	if err != nil {
		handler.redirectWithError(writer, request, "exchange_failed")
		return
	}

	// 3. Find or create the local principal
	principal, err := handler.resolver.Resolve(request.Context(), profile)
	if err != nil {
		handler.redirectWithError(writer, request, "server_error")
		return
	}

	// 4. Seal the upstream credential before it touches storage
	sealedCredential, err := handler.sealer.Seal(credential)
	if err != nil {
		handler.redirectWithError(writer, request, "server_error")
		return
	}

	// 5. Establish the session and hand the token to the browser
	session, token, err := handler.manager.CreateSession(request.Context(), principal.ID, sealedCredential)
	if err != nil {
		handler.redirectWithError(writer, request, "server_error")
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(writer, request, handler.frontendURL+"/dashboard?auth=success", http.StatusFound)
}

/*
me returns the authenticated principal.

GET /api/v1/auth/me

Response:
  - 200: Principal profile
  - 401: Not authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := RequirePrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
logout invalidates the current session.

POST /api/v1/auth/logout

Description: Idempotent — logging out an already-dead session still clears
the cookie and returns success.

Response:
  - 200: {message}
  - 401: Not authenticated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	sessionID := SessionIDFrom(request.Context())

	if err := handler.manager.InvalidateSession(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearAuthCookie(writer)
	respond.OK(writer, map[string]string{FieldMessage: "Logged out"})
}

/*
logoutAll invalidates every session belonging to the principal.

POST /api/v1/auth/logout-all

Description: "Sign out everywhere". Best-effort with respect to concurrent
logins.

Response:
  - 200: {message}
  - 401: Not authenticated
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	principal, err := RequirePrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.manager.InvalidateAllSessions(request.Context(), principal.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearAuthCookie(writer)
	respond.OK(writer, map[string]string{FieldMessage: "Logged out everywhere"})
}

/*
rotate replaces the current session with a fresh one.

POST /api/v1/auth/rotate

Description: Used after security-sensitive events. The replacement session is
fully created before the old one is retired, and the new token is re-set on
the auth cookie.

Response:
  - 200: {token}
  - 401: Not authenticated or session already gone
*/
func (handler *Handler) rotate(writer http.ResponseWriter, request *http.Request) {
	sessionID := SessionIDFrom(request.Context())

	session, token, err := handler.manager.RotateSession(request.Context(), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respond.OK(writer, map[string]string{FieldToken: token})
}

// # Cookie Helpers

// clearAuthCookie expires the auth token cookie.
func (handler *Handler) clearAuthCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearStateCookie expires the anti-CSRF state cookie.
func (handler *Handler) clearStateCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.OAuthStateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectWithError bounces the browser back to the frontend with an error tag.
func (handler *Handler) redirectWithError(writer http.ResponseWriter, request *http.Request, reason string) {
	target := handler.frontendURL + "/dashboard?error=" + url.QueryEscape(reason)
	http.Redirect(writer, request, target, http.StatusFound)
}

// newState generates an unguessable anti-CSRF state value.
func newState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
