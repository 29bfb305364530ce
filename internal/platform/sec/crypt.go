// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

// Package sec provides cryptographic primitives for data-at-rest protection.
//
// # Architecture
//
// This package isolates security-sensitive code (AEAD sealing, key derivation)
// from the domain logic. It acts as an Infrastructure service injected into
// the Application layer, currently used to encrypt upstream provider access
// tokens before they are persisted alongside sessions.
package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealingContext binds derived keys to this specific use so the same master
// secret can never produce a key reusable in another subsystem.
const sealingContext = "snipstash/credential-sealing/v1"

// Sealer encrypts and decrypts small secrets with ChaCha20-Poly1305.
//
// # Key Derivation
//
// The AEAD key is derived from the application master secret via HKDF-SHA256,
// so rotating the master secret invalidates all sealed values at once.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from the master secret and returns a
// ready-to-use Sealer.
func NewSealer(masterSecret string) (*Sealer, error) {
	reader := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(sealingContext))

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("sec: failed to derive sealing key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to initialize cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts the plaintext and returns a base64url string containing
// nonce || ciphertext. The output is safe to store in a text column.
func (sealer *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, sealer.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("sec: failed to generate nonce: %w", err)
	}

	sealed := sealer.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value previously produced by [Sealer.Seal].
func (sealer *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("sec: malformed sealed value: %w", err)
	}

	nonceSize := sealer.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("sec: sealed value too short")
	}

	plaintext, err := sealer.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("sec: failed to decrypt sealed value: %w", err)
	}

	return string(plaintext), nil
}
