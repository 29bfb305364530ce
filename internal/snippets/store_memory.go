// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"context"
	"sync"
	"time"

	"github.com/snipstash/snipstash/internal/platform/apperr"
)

// MemoryStore is a mutex-guarded in-memory snippet Store.
//
// It backs the test suite and single-process development setups.
type MemoryStore struct {
	mu       sync.RWMutex
	snippets map[string]Snippet
}

// NewMemoryStore creates an empty in-memory snippet Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snippets: make(map[string]Snippet)}
}

// Get returns the snippet or apperr.NotFound.
func (store *MemoryStore) Get(_ context.Context, id string) (*Snippet, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	snippet, ok := store.snippets[id]
	if !ok {
		return nil, apperr.NotFound("Snippet")
	}
	return &snippet, nil
}

// GetByShareToken returns the snippet carrying the active share token.
func (store *MemoryStore) GetByShareToken(_ context.Context, shareToken string) (*Snippet, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, snippet := range store.snippets {
		if snippet.ShareToken != nil && *snippet.ShareToken == shareToken {
			s := snippet
			return &s, nil
		}
	}
	return nil, apperr.NotFound("Snippet")
}

// Create stores a copy of the snippet.
func (store *MemoryStore) Create(_ context.Context, snippet *Snippet) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	if snippet.CreatedAt.IsZero() {
		snippet.CreatedAt = now
	}
	snippet.UpdatedAt = now
	store.snippets[snippet.ID] = *snippet
	return nil
}

// SetVisibility flips the public flag on a stored snippet.
func (store *MemoryStore) SetVisibility(_ context.Context, id string, isPublic bool) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	snippet, ok := store.snippets[id]
	if !ok {
		return apperr.NotFound("Snippet")
	}
	snippet.IsPublic = isPublic
	snippet.UpdatedAt = time.Now()
	store.snippets[id] = snippet
	return nil
}

// SetShareToken replaces the share token; nil revokes the link.
func (store *MemoryStore) SetShareToken(_ context.Context, id string, shareToken *string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	snippet, ok := store.snippets[id]
	if !ok {
		return apperr.NotFound("Snippet")
	}
	snippet.ShareToken = shareToken
	snippet.UpdatedAt = time.Now()
	store.snippets[id] = snippet
	return nil
}
