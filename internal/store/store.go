// Package store persists applications and workflows in Postgres and serves
// fee catalogs to the pricing core, optionally through a Redis cache.
package store

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrApplicationNotFound    = errors.New("APPLICATION_NOT_FOUND")
	ErrWorkflowNotFound       = errors.New("WORKFLOW_NOT_FOUND")
	ErrConcurrentModification = errors.New("CONCURRENT_MODIFICATION")
	ErrQueryFailed            = errors.New("QUERY_EXECUTION_FAILED")
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
