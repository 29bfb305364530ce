// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/snipstash/snipstash/internal/platform/request"
	"github.com/snipstash/snipstash/internal/platform/respond"
	"github.com/snipstash/snipstash/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the snippet read and share HTTP endpoints.
//
// # Scope
//
// Only the visibility surface is exposed: gated reads, the anonymous share
// path, and the share-link lifecycle. Snippet authoring endpoints are a
// separate concern and do not live here.
type Handler struct {
	service    *Service
	middleware *auth.Middleware

	// shareBaseURL is the public prefix for rendered share links.
	shareBaseURL string
}

// NewHandler constructs the snippet [Handler].
func NewHandler(service *Service, middleware *auth.Middleware, shareBaseURL string) *Handler {
	return &Handler{
		service:      service,
		middleware:   middleware,
		shareBaseURL: shareBaseURL,
	}
}

// Routes returns a [chi.Router] configured with the snippet routes.
//
// # Endpoints
//   - GET    /{id}            : Read a snippet (optional auth).
//   - GET    /share/{token}   : Read via share link (anonymous).
//   - POST   /{id}/share      : Generate a share link (required auth).
//   - DELETE /{id}/share      : Revoke the share link (required auth).
//   - PATCH  /{id}/visibility : Toggle public visibility (required auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Anonymous share path: the token IS the credential
	router.Get("/share/{token}", handler.readShared)

	// Gated read: anonymous visitors still reach public snippets
	router.Group(func(r chi.Router) {
		r.Use(handler.middleware.Optional)
		r.Get("/{id}", handler.read)
	})

	// Share lifecycle and visibility: owner only
	router.Group(func(r chi.Router) {
		r.Use(handler.middleware.Required)
		r.Post("/{id}/share", handler.generateShare)
		r.Delete("/{id}/share", handler.revokeShare)
		r.Patch("/{id}/visibility", handler.setVisibility)
	})

	return router
}

// # Request Payloads

type setVisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

/*
read returns a snippet, subject to the access rules.

GET /api/v1/snippets/{id}

Response:
  - 200: Snippet
  - 401: Private snippet, anonymous caller
  - 403: Private snippet, non-owner caller
  - 404: Unknown snippet
*/
func (handler *Handler) read(writer http.ResponseWriter, request *http.Request) {
	snippet, err := handler.service.Read(
		request.Context(),
		auth.PrincipalFrom(request.Context()),
		requestutil.ID(request, "id"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snippet)
}

/*
readShared returns a snippet via its share link. No authentication.

GET /api/v1/snippets/share/{token}

Response:
  - 200: Snippet
  - 404: Unknown or revoked token
*/
func (handler *Handler) readShared(writer http.ResponseWriter, request *http.Request) {
	snippet, err := handler.service.ReadShared(request.Context(), requestutil.Param(request, "token"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snippet)
}

/*
generateShare mints a fresh share link for a snippet.

POST /api/v1/snippets/{id}/share

Response:
  - 201: {share_token, share_url}
  - 403: Caller is not the owner
  - 429: Generation budget exhausted
*/
func (handler *Handler) generateShare(writer http.ResponseWriter, request *http.Request) {
	principal, err := auth.RequirePrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	shareToken, err := handler.service.GenerateShareLink(request.Context(), principal, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{
		FieldShareToken: shareToken,
		FieldShareURL:   handler.shareBaseURL + "/snippets/share/" + shareToken,
	})
}

/*
revokeShare deletes the active share link of a snippet. Idempotent.

DELETE /api/v1/snippets/{id}/share

Response:
  - 200: {message}
  - 403: Caller is not the owner
*/
func (handler *Handler) revokeShare(writer http.ResponseWriter, request *http.Request) {
	principal, err := auth.RequirePrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeShareLink(request.Context(), principal, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Share link revoked"})
}

/*
setVisibility toggles a snippet between private and public.

PATCH /api/v1/snippets/{id}/visibility

Request:
  - Body: setVisibilityRequest (IsPublic)

Response:
  - 200: {message}
  - 400: Malformed body
  - 403: Caller is not the owner
*/
func (handler *Handler) setVisibility(writer http.ResponseWriter, request *http.Request) {
	principal, err := auth.RequirePrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setVisibilityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetVisibility(request.Context(), principal, requestutil.ID(request, "id"), input.IsPublic); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Visibility updated"})
}
