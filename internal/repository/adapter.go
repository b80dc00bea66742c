package repository

import (
	"database/sql"

	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/repository/mysql"
	"github.com/Walehamdi1/QNA/internal/repository/postgres"
	"github.com/Walehamdi1/QNA/internal/repository/sqlite"
)

var (
	_ DatabaseFactory = (*sqlite.Factory)(nil)
	_ DatabaseFactory = (*mysql.Factory)(nil)
	_ DatabaseFactory = (*postgres.Factory)(nil)
)

// factories maps each engine to its dialect / Associe chaque moteur à son dialecte
var factories = map[db.DatabaseType]func() DatabaseFactory{
	db.SQLite:     func() DatabaseFactory { return sqlite.NewFactory() },
	db.MySQL:      func() DatabaseFactory { return mysql.NewFactory() },
	db.PostgreSQL: func() DatabaseFactory { return postgres.NewFactory() },
}

// Adapter hands out repositories bound to one connection pool / Fournit les repositories liés à un pool
type Adapter struct {
	conn    *sql.DB
	factory DatabaseFactory
}

// NewAdapter picks the dialect named by driver, SQLite when unknown / Choisit le dialecte, SQLite par défaut
func NewAdapter(conn *sql.DB, driver string) *Adapter {
	newFactory, ok := factories[db.ParseDatabaseType(driver)]
	if !ok {
		newFactory = factories[db.SQLite]
	}
	return &Adapter{conn: conn, factory: newFactory()}
}

// UserRepository returns the user repository / Retourne le repository utilisateur
func (a *Adapter) UserRepository() ports.UserRepository {
	return a.factory.NewUserRepository(a.conn)
}

func (a *Adapter) RefreshTokenStore() ports.RefreshTokenStore {
	return a.factory.NewRefreshTokenStore(a.conn)
}

// FormulaireRepository returns form repository / Retourne le repository des formulaires
func (a *Adapter) FormulaireRepository() ports.FormulaireRepository {
	return a.factory.NewFormulaireRepository(a.conn)
}

// QuestionRepository returns question repository / Retourne le repository des questions
func (a *Adapter) QuestionRepository() ports.QuestionRepository {
	return a.factory.NewQuestionRepository(a.conn)
}

// ReponseClientRepository returns client answer repository / Retourne le repository des réponses clients
func (a *Adapter) ReponseClientRepository() ports.ReponseClientRepository {
	return a.factory.NewReponseClientRepository(a.conn)
}

// ReponseFournisseurRepository returns supplier comment repository / Retourne le repository des commentaires fournisseurs
func (a *Adapter) ReponseFournisseurRepository() ports.ReponseFournisseurRepository {
	return a.factory.NewReponseFournisseurRepository(a.conn)
}
