// Package postgres implements the store interfaces on PostgreSQL. Queries
// are built with squirrel using dollar placeholders and executed through
// sqlx, so every store works on either a *sqlx.DB or a *sqlx.Tx. Schema
// migrations live in the embedded migrations directory and are applied
// with goose.
package postgres
