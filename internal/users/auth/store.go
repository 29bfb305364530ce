// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
)

// # Session Data Access

// SessionStore defines the data access contract for bearer-token sessions.
//
// The interface is deliberately narrow: policy (expiry checks, rotation
// ordering) lives in the [Manager], never in the adapters.
type SessionStore interface {

	/*
		Create persists a new session row.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures (wrapped as apperr.StoreUnavailable)
	*/
	Create(context context.Context, session *Session) error

	/*
		Get returns the session with the given ID, whether expired or not.
		Expiry policy is the Manager's job.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound when absent, apperr.StoreUnavailable on I/O failure
	*/
	Get(context context.Context, id string) (*Session, error)

	/*
		Delete removes a session row. Deleting an absent row is not an error.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		DeleteByPrincipal removes every session belonging to the principal.

		Parameters:
		  - context: context.Context
		  - principalID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByPrincipal(context context.Context, principalID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Description: Hygiene sweep only; correctness never depends on it because
		expired sessions are rejected (and lazily deleted) on read.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Principal Data Access

// PrincipalStore defines the data access contract for principal identities.
type PrincipalStore interface {

	/*
		Get returns the principal with the given internal ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Principal: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	Get(context context.Context, id string) (*Principal, error)

	/*
		GetByProviderID returns the principal linked to the upstream provider account.

		Parameters:
		  - context: context.Context
		  - githubID: int64

		Returns:
		  - *Principal: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	GetByProviderID(context context.Context, githubID int64) (*Principal, error)

	/*
		Create persists a brand-new principal.

		Parameters:
		  - context: context.Context
		  - principal: *Principal

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, principal *Principal) error

	/*
		Update persists refreshed profile fields for an existing principal.

		Parameters:
		  - context: context.Context
		  - principal: *Principal

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, principal *Principal) error
}
