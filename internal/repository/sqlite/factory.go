package sqlite

import (
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/repository/sqlstore"
)

// Dialect is the SQLite flavour of db.Dialect / Variante SQLite de db.Dialect
type Dialect struct{}

func (Dialect) Type() db.DatabaseType { return db.SQLite }

// Rebind keeps ? placeholders / Conserve les placeholders ?
func (Dialect) Rebind(query string) string { return query }

func (Dialect) TranslateError(err error) error { return handleError(err) }

// UseReturning is false: modernc reports LastInsertId / modernc fournit LastInsertId
func (Dialect) UseReturning() bool { return false }

// Factory implements DatabaseFactory for SQLite / Implémente DatabaseFactory pour SQLite
// The compile-time check is in adapter.go to avoid import cycles
// La vérification à la compilation est dans adapter.go pour éviter les cycles d'imports
type Factory struct {
	sqlstore.Factory
}

// NewFactory creates SQLite factory / Crée la factory SQLite
func NewFactory() *Factory {
	return &Factory{sqlstore.Factory{Dialect: Dialect{}}}
}
