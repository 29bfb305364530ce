// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/snipstash/snipstash/internal/platform/apperr"
)

// MemorySessionStore is a mutex-guarded in-memory SessionStore.
//
// It backs the test suite and single-process development setups. It honors
// the same contract as the durable adapters, including returning rows whether
// expired or not.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty in-memory SessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

// Create stores a copy of the session.
func (store *MemorySessionStore) Create(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.sessions[session.ID] = *session
	return nil
}

// Get returns the session or apperr.NotFound.
func (store *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	session, ok := store.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	return &session, nil
}

// Delete removes the session. Absent IDs are a silent success.
func (store *MemorySessionStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, id)
	return nil
}

// DeleteByPrincipal removes every session owned by the principal.
func (store *MemorySessionStore) DeleteByPrincipal(_ context.Context, principalID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for id, session := range store.sessions {
		if session.PrincipalID == principalID {
			delete(store.sessions, id)
		}
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is in the past.
func (store *MemorySessionStore) DeleteExpired(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	for id, session := range store.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(store.sessions, id)
		}
	}
	return nil
}

// Len reports the number of stored sessions. Test helper.
func (store *MemorySessionStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return len(store.sessions)
}

// # In-Memory Principal Store

// MemoryPrincipalStore is a mutex-guarded in-memory PrincipalStore.
type MemoryPrincipalStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
}

// NewMemoryPrincipalStore creates an empty in-memory PrincipalStore.
func NewMemoryPrincipalStore() *MemoryPrincipalStore {
	return &MemoryPrincipalStore{principals: make(map[string]Principal)}
}

// Get returns the principal with the given internal ID or apperr.NotFound.
func (store *MemoryPrincipalStore) Get(_ context.Context, id string) (*Principal, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	principal, ok := store.principals[id]
	if !ok {
		return nil, apperr.NotFound("Principal")
	}
	return &principal, nil
}

// GetByProviderID returns the principal linked to the GitHub account ID.
func (store *MemoryPrincipalStore) GetByProviderID(_ context.Context, githubID int64) (*Principal, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, principal := range store.principals {
		if principal.GithubID == githubID {
			p := principal
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Principal")
}

// Create stores a copy of the principal.
func (store *MemoryPrincipalStore) Create(_ context.Context, principal *Principal) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now
	store.principals[principal.ID] = *principal
	return nil
}

// Update overwrites the stored principal.
func (store *MemoryPrincipalStore) Update(_ context.Context, principal *Principal) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	principal.UpdatedAt = time.Now()
	store.principals[principal.ID] = *principal
	return nil
}
