// Package sqlstore implements the repositories once in portable SQL.
// Queries are written with ? placeholders and run through a db.Dialect,
// which rebinds them and translates driver errors, so the sqlite, mysql
// and postgres packages only have to provide their dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

// conn binds a DBTX to a dialect / Associe un DBTX à un dialecte
type conn struct {
	db ports.DBTX
	d  db.Dialect
}

func (c conn) with(dbtx ports.DBTX) conn {
	return conn{db: dbtx, d: c.d}
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.db.ExecContext(ctx, c.d.Rebind(query), args...)
	if err != nil {
		return nil, c.d.TranslateError(err)
	}
	return res, nil
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.db.QueryContext(ctx, c.d.Rebind(query), args...)
	if err != nil {
		return nil, c.d.TranslateError(err)
	}
	return rows, nil
}

// insert runs an INSERT and returns the new id / Exécute un INSERT et retourne le nouvel id
func (c conn) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if c.d.UseReturning() {
		var id int64
		if err := c.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, c.d.TranslateError(err)
		}
		return id, nil
	}

	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, c.d.TranslateError(err)
	}
	return id, nil
}

// affected runs a statement and returns the affected row count / Exécute et retourne le nombre de lignes touchées
func (c conn) affected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, c.d.TranslateError(err)
	}
	return n, nil
}

// inTx runs fn in a transaction, or directly when already inside one / Exécute fn en transaction, ou directement si déjà dans une
func (c conn) inTx(ctx context.Context, fn func(conn) error) error {
	beginner, ok := c.db.(ports.TxBeginner)
	if !ok {
		return fn(c)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return c.d.TranslateError(err)
	}
	defer tx.Rollback()

	if err := fn(c.with(tx)); err != nil {
		return err
	}
	return c.d.TranslateError(tx.Commit())
}

// statement is one step of a multi-statement operation / Étape d'une opération multi-requêtes
type statement struct {
	query string
	args  []any
}

// execAll runs statements in order inside one transaction / Exécute les requêtes dans l'ordre en une transaction
func (c conn) execAll(ctx context.Context, stmts ...statement) error {
	return c.inTx(ctx, func(tx conn) error {
		for _, s := range stmts {
			if _, err := tx.exec(ctx, s.query, s.args...); err != nil {
				return err
			}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
