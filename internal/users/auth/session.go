// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/snipstash/snipstash/internal/platform/apperr"
)

// Session represents an active authenticated session.
type Session struct {
	ID string `json:"id"`

	PrincipalID string `json:"principal_id"`

	// UpstreamCredential is the AEAD-sealed provider access token. It is
	// stored so the platform can call the provider API on the user's behalf
	// later; it is never returned to clients.
	UpstreamCredential string `json:"-"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionID generates an opaque, unguessable session identifier.
//
// # Format
//
// 32 bytes from crypto/rand, base64url without padding (43 characters).
// The identifier carries no embedded meaning and no user data.
func NewSessionID() (string, error) {
	raw := make([]byte, SessionIDLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth_session_id_generation_failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// # Session Manager

// Manager owns the session lifecycle: creation, resolution, rotation, and
// invalidation. It is the only component allowed to interpret session expiry.
type Manager struct {
	sessions   SessionStore
	principals PrincipalStore
	codec      *Codec
	logger     *slog.Logger

	// now is the injectable clock. Tests pin it to exercise expiry boundaries.
	now func() time.Time
}

// NewManager creates a session Manager wired to the given stores and codec.
func NewManager(sessions SessionStore, principals PrincipalStore, codec *Codec, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:   sessions,
		principals: principals,
		codec:      codec,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the Manager's time source. Intended for tests.
func (manager *Manager) WithClock(clock func() time.Time) *Manager {
	manager.now = clock
	return manager
}

/*
CreateSession establishes a new session for a freshly authenticated principal.

Description: Generates a fresh opaque ID, computes the expiry from the shared
SessionTTL constant, and signs the bearer token BEFORE inserting the row. If
token signing fails there is no orphaned session; if the insert fails the
token references nothing and verifies to a dead session.

Parameters:
  - context: context.Context
  - principalID: string
  - sealedCredential: string (AEAD-sealed upstream access token)

Returns:
  - *Session: The persisted session
  - string: Signed bearer token whose exp equals the session's ExpiresAt
  - error: Persistence or signing failures
*/
func (manager *Manager) CreateSession(context context.Context, principalID string, sealedCredential string) (*Session, string, error) {

	// 1. Generate the opaque identifier
	sessionID, err := NewSessionID()
	if err != nil {
		return nil, "", err
	}

	// 2. Compute the shared expiry instant
	currentTime := manager.now()
	session := &Session{
		ID:                 sessionID,
		PrincipalID:        principalID,
		UpstreamCredential: sealedCredential,
		ExpiresAt:          currentTime.Add(SessionTTL),
		CreatedAt:          currentTime,
	}

	// 3. Sign the token first so no session row can exist without a token
	token, err := manager.codec.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, "", err
	}

	// 4. Persist the row
	if err := manager.sessions.Create(context, session); err != nil {
		return nil, "", err
	}

	return session, token, nil
}

/*
ResolveSession loads the session and its principal, enforcing lazy expiry.

Description: A session observed at or after its ExpiresAt instant is treated
as absent: the row is deleted best-effort and the caller receives NotFound.
The boundary is inclusive — a lookup at exactly ExpiresAt fails. Store outages
surface as apperr.StoreUnavailable, never as NotFound, so the middleware can
keep 503 and 401 apart.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - *Principal: The session's authenticated identity
  - error: apperr.NotFound, apperr.StoreUnavailable, or retrieval failures
*/
func (manager *Manager) ResolveSession(context context.Context, sessionID string) (*Principal, error) {

	// 1. Load the row (the store does not interpret expiry)
	session, err := manager.sessions.Get(context, sessionID)
	if err != nil {
		return nil, err
	}

	// 2. Lazy expiry: inclusive at the boundary
	if !manager.now().Before(session.ExpiresAt) {
		// Best-effort cleanup. A failed delete changes nothing: the session
		// stays expired and every future read takes this same path.
		if deleteErr := manager.sessions.Delete(context, session.ID); deleteErr != nil {
			manager.logger.Warn("auth_expired_session_cleanup_failed",
				slog.String("session_id", session.ID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, apperr.NotFound("Session")
	}

	// 3. Resolve the identity
	principal, err := manager.principals.Get(context, session.PrincipalID)
	if err != nil {
		return nil, err
	}

	return principal, nil
}

/*
RotateSession replaces a session with a fresh one for the same principal.

Description: Implemented as create-then-delete. The new session is fully
persisted before the old one is removed, so the principal never observes a
window with zero valid sessions. If the final delete fails the old session
remains valid until its natural expiry, which is safe.

Parameters:
  - context: context.Context
  - oldSessionID: string

Returns:
  - *Session: The replacement session
  - string: Bearer token for the replacement session
  - error: apperr.NotFound when the old session is absent or expired
*/
func (manager *Manager) RotateSession(context context.Context, oldSessionID string) (*Session, string, error) {

	// 1. Load and expiry-check the old session
	oldSession, err := manager.sessions.Get(context, oldSessionID)
	if err != nil {
		return nil, "", err
	}
	if !manager.now().Before(oldSession.ExpiresAt) {
		if deleteErr := manager.sessions.Delete(context, oldSession.ID); deleteErr != nil {
			manager.logger.Warn("auth_expired_session_cleanup_failed",
				slog.String("session_id", oldSession.ID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, "", apperr.NotFound("Session")
	}

	// 2. Create the replacement first
	newSession, token, err := manager.CreateSession(context, oldSession.PrincipalID, oldSession.UpstreamCredential)
	if err != nil {
		return nil, "", err
	}

	// 3. Retire the old session
	if err := manager.sessions.Delete(context, oldSession.ID); err != nil {
		manager.logger.Warn("auth_rotation_old_session_delete_failed",
			slog.String("session_id", oldSession.ID),
			slog.Any("error", err),
		)
	}

	return newSession, token, nil
}

/*
InvalidateSession removes a single session.

Description: Idempotent — invalidating an already-absent session succeeds.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Persistence failures only
*/
func (manager *Manager) InvalidateSession(context context.Context, sessionID string) error {
	return manager.sessions.Delete(context, sessionID)
}

/*
InvalidateAllSessions removes every session belonging to the principal.

Description: "Sign out everywhere". Best-effort with respect to concurrent
logins: a session created while the sweep runs may survive it.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: Persistence failures
*/
func (manager *Manager) InvalidateAllSessions(context context.Context, principalID string) error {
	return manager.sessions.DeleteByPrincipal(context, principalID)
}

/*
SweepExpired physically removes expired session rows.

Description: Pure hygiene; intended to run periodically from the server's
background loop. Correctness never depends on it.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (manager *Manager) SweepExpired(context context.Context) error {
	return manager.sessions.DeleteExpired(context)
}
