// Package pgx backs the synchronization core with Postgres: documents live
// in one jsonb table and subscription snapshots are driven by
// LISTEN/NOTIFY, while users, accounts and sessions use dedicated tables.
//
// Expected schema:
//
//	CREATE TABLE documents (
//	    collection text   NOT NULL,
//	    id         text   NOT NULL,
//	    data       jsonb  NOT NULL,
//	    position   bigserial,
//	    PRIMARY KEY (collection, id)
//	);
//
//	CREATE TABLE users (
//	    id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    email          text NOT NULL UNIQUE,
//	    email_verified boolean NOT NULL DEFAULT false,
//	    name           text NOT NULL DEFAULT '',
//	    image          text,
//	    created_at     timestamptz NOT NULL DEFAULT now(),
//	    updated_at     timestamptz NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE accounts (
//	    id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    user_id     uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//	    provider_id text NOT NULL,
//	    account_id  text NOT NULL,
//	    password    text,
//	    expires_at  timestamptz,
//	    created_at  timestamptz NOT NULL DEFAULT now(),
//	    updated_at  timestamptz NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE sessions (
//	    id         text PRIMARY KEY,
//	    user_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//	    token_hash text NOT NULL UNIQUE,
//	    ip_address text NOT NULL DEFAULT '',
//	    user_agent text NOT NULL DEFAULT '',
//	    expires_at timestamptz NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
)

// Adapter implements core.AuthStorage on a pgx connection pool.
type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// NewStore returns a core.DocumentStore on the same pool. The store's
// notification listener starts with the first subscription.
func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{
		pool: pool,
		log:  log,
		subs: make(map[string]map[int]*subscription),
	}
}
