package ports

import (
	"context"
	"database/sql"
)

// DBTX is what repositories run queries on: *sql.DB outside a transaction, *sql.Tx inside
// DBTX est la cible des requêtes : *sql.DB hors transaction, *sql.Tx dedans
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions, satisfied by *sql.DB / Démarre des transactions, satisfait par *sql.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
