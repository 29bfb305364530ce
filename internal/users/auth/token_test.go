// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/users/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

/*
TestCodec_RoundTrip verifies that an issued token verifies back to its session ID.
*/
func TestCodec_RoundTrip(t *testing.T) {
	codec := auth.NewCodec(testSecret, "snipstash.app")

	sessionID, err := auth.NewSessionID()
	require.NoError(t, err)

	token, err := codec.Issue(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

/*
TestCodec_Verify_Failures checks that every tampering and misuse mode collapses
into the single ErrTokenInvalid sentinel.
*/
func TestCodec_Verify_Failures(t *testing.T) {
	codec := auth.NewCodec(testSecret, "snipstash.app")

	valid, err := codec.Issue("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"empty_string", func(t *testing.T) string {
			return ""
		}},
		{"garbage", func(t *testing.T) string {
			return "not.a.token"
		}},
		{"single_byte_mutation", func(t *testing.T) string {
			// Flip one character in the signature segment.
			mutated := []byte(valid)
			last := len(mutated) - 1
			if mutated[last] == 'A' {
				mutated[last] = 'B'
			} else {
				mutated[last] = 'A'
			}
			return string(mutated)
		}},
		{"wrong_secret", func(t *testing.T) string {
			other := auth.NewCodec("ffffffffffffffffffffffffffffffff", "snipstash.app")
			token, err := other.Issue("session-1", time.Now().Add(time.Hour))
			require.NoError(t, err)
			return token
		}},
		{"wrong_issuer", func(t *testing.T) string {
			other := auth.NewCodec(testSecret, "someone-else.example")
			token, err := other.Issue("session-1", time.Now().Add(time.Hour))
			require.NoError(t, err)
			return token
		}},
		{"expired", func(t *testing.T) string {
			token, err := codec.Issue("session-1", time.Now().Add(-time.Minute))
			require.NoError(t, err)
			return token
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token(t))
			assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		})
	}
}

/*
TestNewSessionID checks the format and uniqueness of session identifiers.
*/
func TestNewSessionID(t *testing.T) {
	first, err := auth.NewSessionID()
	require.NoError(t, err)
	second, err := auth.NewSessionID()
	require.NoError(t, err)

	// 32 bytes base64url without padding is 43 characters.
	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}
