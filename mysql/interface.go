// Package mysql holds the wire-independent data model shared by the
// protocol engine (package wire) and the session layer (package
// mysqlconn).
package mysql

import "context"

// Conn is the narrow surface the supplemental layers (package autorc's
// reconnecting wrapper, package driver's database/sql adapter) depend on,
// so they can be built against this interface instead of importing
// mysqlconn.Session's concrete type directly.
type Conn interface {
	Fetch(ctx context.Context, query string) (Result, error)
	FetchAll(ctx context.Context, queries []string) (Result, error)
	Execute(ctx context.Context, name, text string, params []Value) (Result, error)
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context, reason error) error
	Close() error
}
