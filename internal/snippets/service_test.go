// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/snippets"
	"github.com/snipstash/snipstash/internal/users/auth"
)

// allowAllLimiter never throttles.
type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

// denyAllLimiter simulates an exhausted budget.
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func newTestService(t *testing.T) (*snippets.Service, *snippets.MemoryStore) {
	t.Helper()
	store := snippets.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return snippets.NewService(store, allowAllLimiter{}, logger), store
}

func seedSnippet(t *testing.T, service *snippets.Service, principal *auth.Principal, isPublic bool) *snippets.Snippet {
	t.Helper()
	snippet, err := service.Create(context.Background(), principal, &snippets.Snippet{
		Title:    "Debounce helper",
		Code:     "export const debounce = ...",
		Language: "typescript",
		IsPublic: isPublic,
	})
	require.NoError(t, err)
	return snippet
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, status, appError.HTTPStatus)
}

/*
TestService_Read covers the gated read path for owner, stranger, and anonymous.
*/
func TestService_Read(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	private := seedSnippet(t, service, owner, false)
	public := seedSnippet(t, service, owner, true)

	t.Run("owner_reads_private", func(t *testing.T) {
		got, err := service.Read(ctx, owner, private.ID)
		require.NoError(t, err)
		assert.Equal(t, private.ID, got.ID)
	})

	t.Run("stranger_gets_403_on_private", func(t *testing.T) {
		_, err := service.Read(ctx, stranger, private.ID)
		wantStatus(t, err, http.StatusForbidden)
	})

	t.Run("anonymous_gets_401_on_private", func(t *testing.T) {
		_, err := service.Read(ctx, nil, private.ID)
		wantStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("anonymous_reads_public", func(t *testing.T) {
		got, err := service.Read(ctx, nil, public.ID)
		require.NoError(t, err)
		assert.Equal(t, public.ID, got.ID)
	})

	t.Run("unknown_id_404", func(t *testing.T) {
		_, err := service.Read(ctx, owner, "missing")
		wantStatus(t, err, http.StatusNotFound)
	})
}

/*
TestService_ShareLifecycle exercises generate, shared read, and revocation.
*/
func TestService_ShareLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	private := seedSnippet(t, service, owner, false)

	// 1. Owner generates a link
	token, err := service.GenerateShareLink(ctx, owner, private.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 2. Anyone with the token reads the private snippet
	shared, err := service.ReadShared(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, private.ID, shared.ID)

	// 3. Wrong token still fails
	_, err = service.ReadShared(ctx, "not-the-token")
	wantStatus(t, err, http.StatusNotFound)

	// 4. Regenerating replaces (and thereby revokes) the previous token
	second, err := service.GenerateShareLink(ctx, owner, private.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, second)

	_, err = service.ReadShared(ctx, token)
	wantStatus(t, err, http.StatusNotFound)

	// 5. Revocation is immediate and idempotent
	require.NoError(t, service.RevokeShareLink(ctx, owner, private.ID))
	_, err = service.ReadShared(ctx, second)
	wantStatus(t, err, http.StatusNotFound)
	require.NoError(t, service.RevokeShareLink(ctx, owner, private.ID))
}

/*
TestService_Share_OwnerOnly ensures non-owners cannot manage share links.
*/
func TestService_Share_OwnerOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	snippet := seedSnippet(t, service, owner, false)

	_, err := service.GenerateShareLink(ctx, stranger, snippet.ID)
	wantStatus(t, err, http.StatusForbidden)

	err = service.RevokeShareLink(ctx, stranger, snippet.ID)
	wantStatus(t, err, http.StatusForbidden)

	_, err = service.GenerateShareLink(ctx, nil, snippet.ID)
	wantStatus(t, err, http.StatusUnauthorized)
}

/*
TestService_Share_RateLimited verifies the per-principal generation budget.
*/
func TestService_Share_RateLimited(t *testing.T) {
	store := snippets.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := snippets.NewService(store, denyAllLimiter{}, logger)

	snippet := seedSnippet(t, service, owner, false)

	_, err := service.GenerateShareLink(context.Background(), owner, snippet.ID)
	wantStatus(t, err, http.StatusTooManyRequests)
}

/*
TestService_SetVisibility verifies the owner-only toggle changes the read rules.
*/
func TestService_SetVisibility(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	snippet := seedSnippet(t, service, owner, false)

	err := service.SetVisibility(ctx, stranger, snippet.ID, true)
	wantStatus(t, err, http.StatusForbidden)

	require.NoError(t, service.SetVisibility(ctx, owner, snippet.ID, true))

	got, err := service.Read(ctx, nil, snippet.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
}

/*
TestService_Create_Validation checks the input rules on snippet creation.
*/
func TestService_Create_Validation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, owner, &snippets.Snippet{Title: "", Code: "x"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = service.Create(ctx, owner, &snippets.Snippet{Title: "t", Code: ""})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = service.Create(ctx, nil, &snippets.Snippet{Title: "t", Code: "x"})
	wantStatus(t, err, http.StatusUnauthorized)
}
