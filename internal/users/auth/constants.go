// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import "time"

// # Session Lifetime

const (
	// SessionTTL is the lifetime of a session row and of the bearer token
	// issued for it. Both always expire at the same instant: one constant
	// feeds the row's expires_at and the token's exp claim.
	SessionTTL = 7 * 24 * time.Hour

	// SessionIDLength is the entropy of a session identifier in bytes.
	// 32 bytes of crypto/rand makes identifiers unguessable; the identifier
	// itself carries no meaning and no user data.
	SessionIDLength = 32
)

// # Field Identifiers

// Global field names used in the authentication HTTP surface.
const (
	FieldState   = "state"
	FieldCode    = "code"
	FieldAuthURL = "auth_url"
	FieldToken   = "token"
	FieldMessage = "message"
)
