// Package postgres implements the internal/store interfaces on PostgreSQL.
//
// Queries go through sqlx on top of the pgx database/sql driver. Every store
// method is a single statement; multi-document operations are sequenced by
// the caller. A user's pending task set is kept in a JSONB array column.
// Schema migrations are embedded and applied with goose.
package postgres
