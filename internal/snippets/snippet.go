// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

/*
Package snippets implements the snippet domain: entities, visibility rules,
and the share-link lifecycle.

# Architecture

The access rules live in pure evaluator functions with no I/O, so every
policy decision is trivially testable. The service layer combines the
evaluator with storage and the share-link rate limit; the HTTP layer exposes
only the read and share surfaces.
*/
package snippets

import (
	"time"
)

// # Domain Entities

// Snippet represents a stored code snippet.
type Snippet struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags,omitempty"`

	// IsPublic makes the snippet world-readable. It never grants write.
	IsPublic bool `json:"is_public"`

	// ShareToken is the unguessable capability for link sharing. A nil value
	// means no active share link; revocation sets it back to nil.
	ShareToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resource projects the snippet onto its access-control descriptor.
func (snippet *Snippet) Resource() Resource {
	return Resource{
		OwnerID:    snippet.OwnerID,
		IsPublic:   snippet.IsPublic,
		ShareToken: snippet.ShareToken,
	}
}

// # Field Identifiers

const (
	FieldShareToken = "share_token"
	FieldShareURL   = "share_url"
	FieldMessage    = "message"
)
