// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snipstash/snipstash/internal/platform/apperr"
	"github.com/snipstash/snipstash/internal/platform/constants"
)

// RedisSessionStore implements SessionStore on Redis.
//
// # Layout
//
// Each session is a JSON blob at "auth:session:<id>" with a key TTL matching
// the session expiry. A per-principal set at "auth:principal_sessions:<pid>"
// tracks the session IDs so DeleteByPrincipal can find them without SCAN.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// sessionKey builds the Redis key for a session ID.
func sessionKey(id string) string {
	return constants.RedisPrefixSession + id
}

// principalIndexKey builds the Redis key for a principal's session index set.
func principalIndexKey(principalID string) string {
	return constants.RedisPrefixPrincipalIndex + principalID
}

/*
Create persists the session as a TTL-keyed JSON blob and indexes it.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: apperr.StoreUnavailable on connectivity or marshal failures
*/
func (store *RedisSessionStore) Create(context context.Context, session *Session) error {

	// 1. Marshal the session payload
	payload, err := json.Marshal(session)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("redis_session_store_marshal_failed: %w", err))
	}

	// 2. Key TTL mirrors the session expiry so Redis garbage-collects for us
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	// 3. Write the blob and the index entry atomically
	pipe := store.client.TxPipeline()
	pipe.Set(context, sessionKey(session.ID), payload, ttl)
	pipe.SAdd(context, principalIndexKey(session.PrincipalID), session.ID)
	pipe.Expire(context, principalIndexKey(session.PrincipalID), SessionTTL)

	if _, err := pipe.Exec(context); err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("redis_session_store_create_failed: %w", err))
	}

	return nil
}

/*
Get retrieves a session blob by ID.

Description: A key evicted by Redis TTL is indistinguishable from one that
never existed; both map to apperr.NotFound.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *RedisSessionStore) Get(context context.Context, id string) (*Session, error) {

	// 1. Fetch the blob
	payload, err := store.client.Get(context, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("redis_session_store_get_failed: %w", err))
	}

	// 2. Unmarshal
	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, apperr.StoreUnavailable(fmt.Errorf("redis_session_store_unmarshal_failed: %w", err))
	}

	return session, nil
}

/*
Delete removes a session blob and its index entry. Idempotent.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.StoreUnavailable on connectivity failures
*/
func (store *RedisSessionStore) Delete(context context.Context, id string) error {

	// Read the blob first to learn the principal for index cleanup. An
	// already-absent session leaves nothing to clean.
	session, err := store.Get(context, id)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil
		}
		return err
	}

	pipe := store.client.TxPipeline()
	pipe.Del(context, sessionKey(id))
	pipe.SRem(context, principalIndexKey(session.PrincipalID), id)

	if _, err := pipe.Exec(context); err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("redis_session_store_delete_failed: %w", err))
	}

	return nil
}

/*
DeleteByPrincipal removes every indexed session of the principal.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: apperr.StoreUnavailable on connectivity failures
*/
func (store *RedisSessionStore) DeleteByPrincipal(context context.Context, principalID string) error {

	// 1. Enumerate the principal's sessions from the index set
	sessionIDs, err := store.client.SMembers(context, principalIndexKey(principalID)).Result()
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("redis_session_store_index_read_failed: %w", err))
	}

	// 2. Drop all session blobs plus the index itself
	pipe := store.client.TxPipeline()
	for _, sessionID := range sessionIDs {
		pipe.Del(context, sessionKey(sessionID))
	}
	pipe.Del(context, principalIndexKey(principalID))

	if _, err := pipe.Exec(context); err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("redis_session_store_delete_by_principal_failed: %w", err))
	}

	return nil
}

/*
DeleteExpired is a no-op for Redis.

Description: Key TTLs already garbage-collect expired session blobs, and the
per-principal index sets carry their own TTL.

Parameters:
  - context: context.Context

Returns:
  - error: Always nil
*/
func (store *RedisSessionStore) DeleteExpired(context context.Context) error {
	return nil
}
