// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"context"
)

// # Snippet Data Access

// Store defines the data access contract for snippets.
type Store interface {

	/*
		Get returns the snippet with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Snippet: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	Get(context context.Context, id string) (*Snippet, error)

	/*
		GetByShareToken returns the snippet carrying the given active share token.

		Parameters:
		  - context: context.Context
		  - shareToken: string

		Returns:
		  - *Snippet: Hydrated entity
		  - error: apperr.NotFound when no snippet carries the token
	*/
	GetByShareToken(context context.Context, shareToken string) (*Snippet, error)

	/*
		Create persists a brand-new snippet.

		Parameters:
		  - context: context.Context
		  - snippet: *Snippet

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, snippet *Snippet) error

	/*
		SetVisibility flips the public flag on a snippet.

		Parameters:
		  - context: context.Context
		  - id: string
		  - isPublic: bool

		Returns:
		  - error: Persistence failures
	*/
	SetVisibility(context context.Context, id string, isPublic bool) error

	/*
		SetShareToken replaces the share token. A nil value revokes the link.

		Parameters:
		  - context: context.Context
		  - id: string
		  - shareToken: *string

		Returns:
		  - error: Persistence failures
	*/
	SetShareToken(context context.Context, id string, shareToken *string) error
}
