// Package store is the query gateway: the only place in the service that turns
// a domain request into SQL. Every statement lives in queries.go with a fixed
// shape and positional parameters; nothing here concatenates caller input.
package store

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Querier is satisfied by *sql.DB and *sql.Tx, so the same store methods work
// inside and outside an atomic scope.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
