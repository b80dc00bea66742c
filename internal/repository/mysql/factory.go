package mysql

import (
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/repository/sqlstore"
)

// Dialect is the MySQL flavour of db.Dialect / Variante MySQL de db.Dialect
type Dialect struct{}

func (Dialect) Type() db.DatabaseType { return db.MySQL }

// Rebind keeps ? placeholders / Conserve les placeholders ?
func (Dialect) Rebind(query string) string { return query }

func (Dialect) TranslateError(err error) error { return handleError(err) }

func (Dialect) UseReturning() bool { return false }

// Factory implements DatabaseFactory for MySQL / Implémente DatabaseFactory pour MySQL
type Factory struct {
	sqlstore.Factory
}

// NewFactory creates MySQL factory / Crée la factory MySQL
func NewFactory() *Factory {
	return &Factory{sqlstore.Factory{Dialect: Dialect{}}}
}
