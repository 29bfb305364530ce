// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snipstash/snipstash/internal/platform/dberr"
)

// # Session Store (PostgreSQL)

// PostgresSessionStore implements the SessionStore interface using pgx.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore.
func NewPostgresSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

/*
Create persists a new session row into the users.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresSessionStore) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, principalid, upstreamcredential, expiresat, createdat
		) VALUES ($1, $2, $3, $4, $5)`

	_, err := store.pool.Exec(context, query,
		session.ID,
		session.PrincipalID,
		session.UpstreamCredential,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_store_create_failed: %w", err))
	}

	return nil
}

/*
Get retrieves a session row by its opaque identifier.

Description: Returns the row whether expired or not. Expiry interpretation
belongs to the Manager.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *PostgresSessionStore) Get(context context.Context, id string) (*Session, error) {
	const query = `
		SELECT id, principalid, upstreamcredential, expiresat, createdat
		FROM users.session
		WHERE id = $1`

	session := &Session{}
	err := store.pool.QueryRow(context, query, id).Scan(
		&session.ID,
		&session.PrincipalID,
		&session.UpstreamCredential,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return session, nil
}

/*
Delete removes a session row. Deleting an absent row succeeds silently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Connectivity errors
*/
func (store *PostgresSessionStore) Delete(context context.Context, id string) error {
	const query = `DELETE FROM users.session WHERE id = $1`

	if _, err := store.pool.Exec(context, query, id); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_store_delete_failed: %w", err))
	}

	return nil
}

/*
DeleteByPrincipal removes every session belonging to the given principal.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: Connectivity errors
*/
func (store *PostgresSessionStore) DeleteByPrincipal(context context.Context, principalID string) error {
	const query = `DELETE FROM users.session WHERE principalid = $1`

	if _, err := store.pool.Exec(context, query, principalID); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_store_delete_by_principal_failed: %w", err))
	}

	return nil
}

/*
DeleteExpired physically removes sessions whose expiry is in the past.

Parameters:
  - context: context.Context

Returns:
  - error: Connectivity errors
*/
func (store *PostgresSessionStore) DeleteExpired(context context.Context) error {
	const query = `DELETE FROM users.session WHERE expiresat <= $1`

	if _, err := store.pool.Exec(context, query, time.Now()); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_store_delete_expired_failed: %w", err))
	}

	return nil
}

// # Principal Store (PostgreSQL)

// PostgresPrincipalStore implements the PrincipalStore interface using pgx.
type PostgresPrincipalStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPrincipalStore creates a new PostgreSQL implementation of the PrincipalStore.
func NewPostgresPrincipalStore(pool *pgxpool.Pool) *PostgresPrincipalStore {
	return &PostgresPrincipalStore{pool: pool}
}

// principalColumns is the canonical column list shared by all SELECTs.
const principalColumns = `
	id, githubid, username, email, name, avatarurl, bio, location, blog,
	company, publicrepos, followers, following, isprofilepublic,
	twofactorenabled, createdat, updatedat`

// scanPrincipal hydrates a Principal from a row with the canonical column order.
func scanPrincipal(row interface{ Scan(...any) error }) (*Principal, error) {
	principal := &Principal{}
	err := row.Scan(
		&principal.ID,
		&principal.GithubID,
		&principal.Username,
		&principal.Email,
		&principal.Name,
		&principal.AvatarURL,
		&principal.Bio,
		&principal.Location,
		&principal.Blog,
		&principal.Company,
		&principal.PublicRepos,
		&principal.Followers,
		&principal.Following,
		&principal.IsProfilePublic,
		&principal.TwoFactorEnabled,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return principal, nil
}

/*
Get retrieves a principal by internal UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Principal: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *PostgresPrincipalStore) Get(context context.Context, id string) (*Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM users.account WHERE id = $1`
	return scanPrincipal(store.pool.QueryRow(context, query, id))
}

/*
GetByProviderID retrieves a principal by its upstream GitHub account ID.

Parameters:
  - context: context.Context
  - githubID: int64

Returns:
  - *Principal: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *PostgresPrincipalStore) GetByProviderID(context context.Context, githubID int64) (*Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM users.account WHERE githubid = $1`
	return scanPrincipal(store.pool.QueryRow(context, query, githubID))
}

/*
Create persists a brand-new principal into users.account.

Parameters:
  - context: context.Context
  - principal: *Principal

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresPrincipalStore) Create(context context.Context, principal *Principal) error {
	const query = `
		INSERT INTO users.account (
			id, githubid, username, email, name, avatarurl, bio, location, blog,
			company, publicrepos, followers, following, isprofilepublic,
			twofactorenabled, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	now := time.Now()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now

	_, err := store.pool.Exec(context, query,
		principal.ID,
		principal.GithubID,
		principal.Username,
		principal.Email,
		principal.Name,
		principal.AvatarURL,
		principal.Bio,
		principal.Location,
		principal.Blog,
		principal.Company,
		principal.PublicRepos,
		principal.Followers,
		principal.Following,
		principal.IsProfilePublic,
		principal.TwoFactorEnabled,
		principal.CreatedAt,
		principal.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_principal_store_create_failed: %w", err))
	}

	return nil
}

/*
Update persists refreshed profile fields for an existing principal.

Description: Identity columns (id, githubid) are immutable; everything
sourced from the provider profile is overwritten.

Parameters:
  - context: context.Context
  - principal: *Principal

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresPrincipalStore) Update(context context.Context, principal *Principal) error {
	const query = `
		UPDATE users.account SET
			username = $2, email = $3, name = $4, avatarurl = $5, bio = $6,
			location = $7, blog = $8, company = $9, publicrepos = $10,
			followers = $11, following = $12, updatedat = $13
		WHERE id = $1`

	principal.UpdatedAt = time.Now()

	_, err := store.pool.Exec(context, query,
		principal.ID,
		principal.Username,
		principal.Email,
		principal.Name,
		principal.AvatarURL,
		principal.Bio,
		principal.Location,
		principal.Blog,
		principal.Company,
		principal.PublicRepos,
		principal.Followers,
		principal.Following,
		principal.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_principal_store_update_failed: %w", err))
	}

	return nil
}
