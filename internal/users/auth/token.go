// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is returned by [Codec.Verify] for every verification
// failure: malformed input, signature mismatch, wrong algorithm, or expired
// claims. A single sentinel keeps the codec from acting as an oracle that
// tells an attacker which check failed.
var ErrTokenInvalid = errors.New("auth: token invalid")

// sessionClaims is the payload embedded inside a bearer token.
//
// # Why only a session ID?
//
// The token carries a session reference, not the identity itself. Every
// request resolves the session against the store, so revocation takes effect
// immediately — there is no window where a signed-but-revoked token grants
// access.
type sessionClaims struct {
	jwt.RegisteredClaims

	SessionID string `json:"sid"`
}

// Codec signs and verifies stateless bearer tokens using HMAC-SHA256.
//
// It performs no I/O and never logs token contents.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec creates a Codec with the given signing secret and issuer.
// Secret strength policy is enforced upstream by config validation.
func NewCodec(secret, issuer string) *Codec {
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
	}
}

/*
Issue creates a signed bearer token referencing the given session.

Description: The exp claim is set to exactly expiresAt, so the token and the
session row it references always expire at the same instant.

Parameters:
  - sessionID: string (Opaque session identifier)
  - expiresAt: time.Time (Absolute expiry instant, shared with the session row)

Returns:
  - string: Compact JWS token
  - error: Signing failures
*/
func (codec *Codec) Issue(sessionID string, expiresAt time.Time) (string, error) {
	currentTime := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("auth_token_sign_failed: %w", err)
	}

	return signedToken, nil
}

/*
Verify checks the signature and validity of a bearer token.

Description: Returns the embedded session ID on success. Every failure mode
(garbage input, bad signature, alg confusion, expired claim, missing sid)
collapses into the single [ErrTokenInvalid] sentinel.

Parameters:
  - tokenString: string

Returns:
  - string: Session ID extracted from the 'sid' claim
  - error: ErrTokenInvalid on any verification failure
*/
func (codec *Codec) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Reject any algorithm other than the one we issue with.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return codec.secret, nil
	}, jwt.WithIssuer(codec.issuer))

	if err != nil {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrTokenInvalid
	}

	return claims.SessionID, nil
}
