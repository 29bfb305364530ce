// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/snippets"
	"github.com/snipstash/snipstash/internal/users/auth"
)

var (
	owner    = &auth.Principal{ID: "owner-id", Username: "owner"}
	stranger = &auth.Principal{ID: "stranger-id", Username: "stranger"}
)

func strPtr(s string) *string { return &s }

/*
TestCanRead walks the read decision table over owner, stranger, and anonymous
principals against private and public resources.
*/
func TestCanRead(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		resource  snippets.Resource
		want      bool
	}{
		{"owner_reads_private", owner, snippets.Resource{OwnerID: "owner-id"}, true},
		{"owner_reads_public", owner, snippets.Resource{OwnerID: "owner-id", IsPublic: true}, true},
		{"stranger_denied_private", stranger, snippets.Resource{OwnerID: "owner-id"}, false},
		{"stranger_reads_public", stranger, snippets.Resource{OwnerID: "owner-id", IsPublic: true}, true},
		{"anonymous_denied_private", nil, snippets.Resource{OwnerID: "owner-id"}, false},
		{"anonymous_reads_public", nil, snippets.Resource{OwnerID: "owner-id", IsPublic: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snippets.CanRead(tt.principal, tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestCanWrite verifies that write access is strictly owner-only.
*/
func TestCanWrite(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		resource  snippets.Resource
		want      bool
	}{
		{"owner_writes", owner, snippets.Resource{OwnerID: "owner-id"}, true},
		{"stranger_denied", stranger, snippets.Resource{OwnerID: "owner-id"}, false},
		{"anonymous_denied", nil, snippets.Resource{OwnerID: "owner-id"}, false},
		// Public visibility never grants write.
		{"stranger_denied_on_public", stranger, snippets.Resource{OwnerID: "owner-id", IsPublic: true}, false},
		{"anonymous_denied_on_public", nil, snippets.Resource{OwnerID: "owner-id", IsPublic: true}, false},
		// Share tokens never grant write either.
		{"stranger_denied_despite_share_token", stranger, snippets.Resource{OwnerID: "owner-id", ShareToken: strPtr("tok")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snippets.CanWrite(tt.principal, tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestCanReadByShareToken covers the capability path including revocation.
*/
func TestCanReadByShareToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		resource snippets.Resource
		want     bool
	}{
		{"matching_token_grants", "tok", snippets.Resource{OwnerID: "owner-id", ShareToken: strPtr("tok")}, true},
		{"wrong_token_denies", "other", snippets.Resource{OwnerID: "owner-id", ShareToken: strPtr("tok")}, false},
		{"revoked_link_denies", "tok", snippets.Resource{OwnerID: "owner-id", ShareToken: nil}, false},
		{"empty_presented_token_denies", "", snippets.Resource{OwnerID: "owner-id", ShareToken: strPtr("tok")}, false},
		{"empty_vs_revoked_denies", "", snippets.Resource{OwnerID: "owner-id", ShareToken: nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snippets.CanReadByShareToken(tt.token, tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestAccess_OwnerlessResource ensures a broken row surfaces as an invariant
violation, never as a silent deny.
*/
func TestAccess_OwnerlessResource(t *testing.T) {
	broken := snippets.Resource{OwnerID: "", IsPublic: true}

	_, err := snippets.CanRead(owner, broken)
	require.Error(t, err)
	assert.Equal(t, "INVARIANT_VIOLATION", apperr.As(err).Code)

	_, err = snippets.CanWrite(owner, broken)
	require.Error(t, err)
	assert.Equal(t, "INVARIANT_VIOLATION", apperr.As(err).Code)

	_, err = snippets.CanReadByShareToken("tok", broken)
	require.Error(t, err)
	assert.Equal(t, "INVARIANT_VIOLATION", apperr.As(err).Code)
}
