package postgres

import (
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/repository/sqlstore"
)

// Dialect is the PostgreSQL flavour of db.Dialect / Variante PostgreSQL de db.Dialect
type Dialect struct{}

func (Dialect) Type() db.DatabaseType { return db.PostgreSQL }

// Rebind turns ? into $n / Transforme ? en $n
func (Dialect) Rebind(query string) string { return db.RebindDollar(query) }

func (Dialect) TranslateError(err error) error { return handleError(err) }

// UseReturning is true: lib/pq has no LastInsertId / lib/pq ne fournit pas LastInsertId
func (Dialect) UseReturning() bool { return true }

// Factory implements DatabaseFactory for PostgreSQL / Implémente DatabaseFactory pour PostgreSQL
type Factory struct {
	sqlstore.Factory
}

// NewFactory creates PostgreSQL factory / Crée la factory PostgreSQL
func NewFactory() *Factory {
	return &Factory{sqlstore.Factory{Dialect: Dialect{}}}
}
