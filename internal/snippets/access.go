// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"crypto/subtle"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/users/auth"
)

// Resource is the access-control view of a snippet.
//
// Evaluator functions see only this descriptor, never the full entity, so
// the rules cannot accidentally depend on content.
type Resource struct {
	OwnerID    string
	IsPublic   bool
	ShareToken *string
}

// # Access Rules
//
// The evaluators are pure and total: they perform no I/O and return a
// decision for every input. A Resource with an empty OwnerID violates a
// storage invariant; it is reported as an error instead of being silently
// denied, so broken rows show up as 500s in monitoring rather than as
// phantom permission bugs.

/*
CanRead decides whether the principal may read the resource.

Description: Owners and anyone looking at a public resource may read.
An anonymous principal (nil) may read public resources only.

Parameters:
  - principal: *auth.Principal (nil for anonymous)
  - resource: Resource

Returns:
  - bool: Decision
  - error: apperr.InvariantViolation for an ownerless resource
*/
func CanRead(principal *auth.Principal, resource Resource) (bool, error) {
	if resource.OwnerID == "" {
		return false, apperr.InvariantViolation("access: resource has no owner")
	}

	if resource.IsPublic {
		return true, nil
	}

	if principal != nil && principal.ID == resource.OwnerID {
		return true, nil
	}

	return false, nil
}

/*
CanWrite decides whether the principal may modify the resource.

Description: Only the owner writes. Public visibility and share tokens never
grant write access.

Parameters:
  - principal: *auth.Principal (nil for anonymous)
  - resource: Resource

Returns:
  - bool: Decision
  - error: apperr.InvariantViolation for an ownerless resource
*/
func CanWrite(principal *auth.Principal, resource Resource) (bool, error) {
	if resource.OwnerID == "" {
		return false, apperr.InvariantViolation("access: resource has no owner")
	}

	if principal != nil && principal.ID == resource.OwnerID {
		return true, nil
	}

	return false, nil
}

/*
CanReadByShareToken decides whether a presented share token grants read access.

Description: Grants read only when the resource has an active share token and
the presented value matches it. The comparison is constant-time so response
timing leaks nothing about the stored token. A revoked link (nil token)
denies immediately.

Parameters:
  - presentedToken: string
  - resource: Resource

Returns:
  - bool: Decision
  - error: apperr.InvariantViolation for an ownerless resource
*/
func CanReadByShareToken(presentedToken string, resource Resource) (bool, error) {
	if resource.OwnerID == "" {
		return false, apperr.InvariantViolation("access: resource has no owner")
	}

	if resource.ShareToken == nil || presentedToken == "" {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(presentedToken), []byte(*resource.ShareToken)) == 1 {
		return true, nil
	}

	return false, nil
}
