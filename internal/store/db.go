package store

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sqlx.DB and *sqlx.Tx, so a store can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}
