package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds the typed SQL queries.
type Queries struct {
	db DBTX
}
