// Package pgx implements the engine's storage interfaces on PostgreSQL.
// Profile content lives in a jsonb document column; the engine-owned derived
// fields and all linkage attributes are plain columns so rollups and network
// queries stay indexable.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Storage bundles the store.ProfileStore and store.LinkageStore
// implementations against a pgx connection pool. The two views are separate
// types because both interfaces declare a ListActive method with different
// signatures, which a single Go type cannot provide.
type Storage struct {
	Profiles *ProfileStorage
	Linkages *LinkageStorage
}

// ProfileStorage implements store.ProfileStore against a pgx connection pool.
type ProfileStorage struct {
	conn pgxIConn
}

// LinkageStorage implements store.LinkageStore against a pgx connection pool.
type LinkageStorage struct {
	conn pgxIConn
}

// NewStorage creates a Storage using an existing database connection.
func NewStorage(conn pgxIConn) *Storage {
	return &Storage{
		Profiles: &ProfileStorage{conn: conn},
		Linkages: &LinkageStorage{conn: conn},
	}
}
