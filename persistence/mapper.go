package persistence

import (
	"context"
	"database/sql"
)

// Conn is the store handle mappers and repositories run against.
// Both *sql.DB and *sql.Tx satisfy it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Tx is the transactional surface the unit of work controls.
type Tx interface {
	Commit() error
	Rollback() error
}

// Entity is the identity surface the persistence core requires from
// domain objects.
type Entity interface {
	ID() int64
}

// Mapper translates entity state into statements for one entity kind.
// Both flush operations receive entities in registration order and run
// inside the transaction owned by the unit of work.
type Mapper interface {
	InsertAll(ctx context.Context, entities []Entity) error
	UpdateAll(ctx context.Context, entities []Entity) error
}
