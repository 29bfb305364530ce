// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package snippets

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snipstash/snipstash/internal/platform/dberr"
)

// PostgresStore implements the Store interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the snippet Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// snippetColumns is the canonical column list shared by all SELECTs.
const snippetColumns = `
	id, ownerid, title, description, code, language, tags, ispublic,
	sharetoken, createdat, updatedat`

// scanSnippet hydrates a Snippet from a row with the canonical column order.
func scanSnippet(row interface{ Scan(...any) error }) (*Snippet, error) {
	snippet := &Snippet{}
	err := row.Scan(
		&snippet.ID,
		&snippet.OwnerID,
		&snippet.Title,
		&snippet.Description,
		&snippet.Code,
		&snippet.Language,
		&snippet.Tags,
		&snippet.IsPublic,
		&snippet.ShareToken,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return snippet, nil
}

/*
Get retrieves a snippet by its UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Snippet: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *PostgresStore) Get(context context.Context, id string) (*Snippet, error) {
	query := `SELECT ` + snippetColumns + ` FROM core.snippet WHERE id = $1`
	return scanSnippet(store.pool.QueryRow(context, query, id))
}

/*
GetByShareToken retrieves the snippet carrying the given share token.

Description: Only rows with a non-NULL sharetoken can match, so a revoked
link is indistinguishable from one that never existed.

Parameters:
  - context: context.Context
  - shareToken: string

Returns:
  - *Snippet: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (store *PostgresStore) GetByShareToken(context context.Context, shareToken string) (*Snippet, error) {
	query := `SELECT ` + snippetColumns + ` FROM core.snippet WHERE sharetoken = $1`
	return scanSnippet(store.pool.QueryRow(context, query, shareToken))
}

/*
Create persists a new snippet row into the core.snippet table.

Parameters:
  - context: context.Context
  - snippet: *Snippet

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresStore) Create(context context.Context, snippet *Snippet) error {
	const query = `
		INSERT INTO core.snippet (
			id, ownerid, title, description, code, language, tags, ispublic,
			sharetoken, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if snippet.CreatedAt.IsZero() {
		snippet.CreatedAt = now
	}
	snippet.UpdatedAt = now

	_, err := store.pool.Exec(context, query,
		snippet.ID,
		snippet.OwnerID,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		snippet.Language,
		snippet.Tags,
		snippet.IsPublic,
		snippet.ShareToken,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_snippet_store_create_failed: %w", err))
	}

	return nil
}

/*
SetVisibility flips the public flag.

Parameters:
  - context: context.Context
  - id: string
  - isPublic: bool

Returns:
  - error: Connectivity errors
*/
func (store *PostgresStore) SetVisibility(context context.Context, id string, isPublic bool) error {
	const query = `UPDATE core.snippet SET ispublic = $2, updatedat = $3 WHERE id = $1`

	if _, err := store.pool.Exec(context, query, id, isPublic, time.Now()); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_snippet_store_set_visibility_failed: %w", err))
	}

	return nil
}

/*
SetShareToken replaces the share token. NULL revokes the link immediately.

Parameters:
  - context: context.Context
  - id: string
  - shareToken: *string

Returns:
  - error: Connectivity errors
*/
func (store *PostgresStore) SetShareToken(context context.Context, id string, shareToken *string) error {
	const query = `UPDATE core.snippet SET sharetoken = $2, updatedat = $3 WHERE id = $1`

	if _, err := store.pool.Exec(context, query, id, shareToken, time.Now()); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_snippet_store_set_share_token_failed: %w", err))
	}

	return nil
}
