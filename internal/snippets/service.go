// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/ratelimit"
	"github.com/snipstash/snipstash/internal/platform/validate"
	"github.com/snipstash/snipstash/internal/users/auth"
	"github.com/snipstash/snipstash/pkg/uuidv7"
)

// # Service Layer

// Service implements the snippet use cases on top of the Store and the
// access evaluators.
type Service struct {
	store Store

	// shareLimiter caps share-link generation per principal. Injected as a
	// capability so tests can swap in a permissive or exhausted limiter.
	shareLimiter ratelimit.Limiter

	logger *slog.Logger
}

// NewService constructs the snippet Service.
func NewService(store Store, shareLimiter ratelimit.Limiter, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		shareLimiter: shareLimiter,
		logger:       logger,
	}
}

/*
Read returns a snippet if the principal is allowed to see it.

Description: Owners read everything of theirs; everyone (including anonymous
visitors) reads public snippets. A denied anonymous request maps to 401, a
denied authenticated request to 403.

Parameters:
  - context: context.Context
  - principal: *auth.Principal (nil for anonymous)
  - id: string

Returns:
  - *Snippet: Hydrated entity
  - error: apperr.NotFound, apperr.Unauthorized, apperr.Forbidden
*/
func (service *Service) Read(context context.Context, principal *auth.Principal, id string) (*Snippet, error) {

	// 1. Load
	snippet, err := service.store.Get(context, id)
	if err != nil {
		return nil, err
	}

	// 2. Evaluate
	allowed, err := CanRead(principal, snippet.Resource())
	if err != nil {
		return nil, err
	}
	if !allowed {
		if principal == nil {
			return nil, apperr.Unauthorized("Authentication required")
		}
		return nil, apperr.Forbidden("You do not have access to this snippet")
	}

	return snippet, nil
}

/*
ReadShared returns a snippet via its share-link capability.

Description: The anonymous share path. The token both locates the snippet and
authorizes the read; the evaluator re-checks the match so a revocation racing
with the lookup still denies.

Parameters:
  - context: context.Context
  - shareToken: string

Returns:
  - *Snippet: Hydrated entity
  - error: apperr.NotFound for unknown or revoked tokens
*/
func (service *Service) ReadShared(context context.Context, shareToken string) (*Snippet, error) {

	// 1. Locate by token
	snippet, err := service.store.GetByShareToken(context, shareToken)
	if err != nil {
		return nil, err
	}

	// 2. Re-evaluate the capability
	allowed, err := CanReadByShareToken(shareToken, snippet.Resource())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.NotFound("Snippet")
	}

	return snippet, nil
}

/*
GenerateShareLink mints a fresh share token for a snippet.

Description: Owner-only. Generation is rate-limited per principal; minting a
new token while one exists replaces it, which revokes the previous link.

Parameters:
  - context: context.Context
  - principal: *auth.Principal
  - id: string

Returns:
  - string: The new share token (UUIDv4)
  - error: apperr.Forbidden, apperr.RateLimited, persistence failures
*/
func (service *Service) GenerateShareLink(context context.Context, principal *auth.Principal, id string) (string, error) {

	// 1. Owner check
	snippet, err := service.requireOwner(context, principal, id)
	if err != nil {
		return "", err
	}

	// 2. Per-principal generation budget
	if !service.shareLimiter.Allow(principal.ID) {
		return "", apperr.RateLimited(3600)
	}

	// 3. Mint and persist the capability
	shareToken := uuid.NewString()
	if err := service.store.SetShareToken(context, snippet.ID, &shareToken); err != nil {
		return "", err
	}

	service.logger.Info("snippet_share_link_generated",
		slog.String("snippet_id", snippet.ID),
		slog.String("principal_id", principal.ID),
	)

	return shareToken, nil
}

/*
RevokeShareLink deletes the active share link of a snippet.

Description: Owner-only. Revocation is immediate: the token column is set to
NULL, so in-flight share reads fail from the next statement on. Revoking a
snippet without an active link succeeds (idempotent).

Parameters:
  - context: context.Context
  - principal: *auth.Principal
  - id: string

Returns:
  - error: apperr.Forbidden or persistence failures
*/
func (service *Service) RevokeShareLink(context context.Context, principal *auth.Principal, id string) error {

	snippet, err := service.requireOwner(context, principal, id)
	if err != nil {
		return err
	}

	if err := service.store.SetShareToken(context, snippet.ID, nil); err != nil {
		return err
	}

	service.logger.Info("snippet_share_link_revoked",
		slog.String("snippet_id", snippet.ID),
		slog.String("principal_id", principal.ID),
	)

	return nil
}

/*
SetVisibility flips a snippet between private and public.

Description: Owner-only.

Parameters:
  - context: context.Context
  - principal: *auth.Principal
  - id: string
  - isPublic: bool

Returns:
  - error: apperr.Forbidden or persistence failures
*/
func (service *Service) SetVisibility(context context.Context, principal *auth.Principal, id string, isPublic bool) error {

	snippet, err := service.requireOwner(context, principal, id)
	if err != nil {
		return err
	}

	return service.store.SetVisibility(context, snippet.ID, isPublic)
}

/*
Create persists a new snippet owned by the principal.

Parameters:
  - context: context.Context
  - principal: *auth.Principal
  - snippet: *Snippet (ID and OwnerID are assigned here)

Returns:
  - *Snippet: The persisted snippet
  - error: Validation or persistence failures
*/
func (service *Service) Create(context context.Context, principal *auth.Principal, snippet *Snippet) (*Snippet, error) {

	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	// 1. Validate
	v := &validate.Validator{}
	if err := v.
		Required("title", snippet.Title).
		MaxLen("title", snippet.Title, 200).
		Required("code", snippet.Code).
		Err(); err != nil {
		return nil, err
	}

	// 2. Assign identity and ownership
	snippet.ID = uuidv7.New()
	snippet.OwnerID = principal.ID
	snippet.ShareToken = nil

	// 3. Persist
	if err := service.store.Create(context, snippet); err != nil {
		return nil, err
	}

	return snippet, nil
}

// requireOwner loads the snippet and verifies write access.
func (service *Service) requireOwner(context context.Context, principal *auth.Principal, id string) (*Snippet, error) {
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	snippet, err := service.store.Get(context, id)
	if err != nil {
		return nil, err
	}

	allowed, err := CanWrite(principal, snippet.Resource())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("Only the owner can manage this snippet")
	}

	return snippet, nil
}
