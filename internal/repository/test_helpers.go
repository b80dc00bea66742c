package repository

import (
	"database/sql"
	"fmt"

	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/repository/sqlite"
	_ "modernc.org/sqlite" // SQLite driver
)

// OpenTestSQLite opens a private in-memory SQLite database with the schema applied.
// Ouvre une base SQLite en mémoire avec le schéma appliqué, pour les tests.
func OpenTestSQLite() (*sql.DB, error) {
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// One connection, since every :memory: connection is its own database
	database.SetMaxOpenConns(1)

	schema, err := db.InitialSchema(db.SQLite)
	if err != nil {
		database.Close()
		return nil, err
	}
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

// NewSQLiteUser creates SQLite user repository for tests / Crée un repository utilisateur SQLite pour les tests
func NewSQLiteUser(database *sql.DB) ports.UserRepository {
	return sqlite.NewFactory().NewUserRepository(database)
}

// NewSQLiteRefreshTokenStore creates SQLite refresh token store for tests / Crée un store de refresh tokens SQLite pour les tests
func NewSQLiteRefreshTokenStore(database *sql.DB) ports.RefreshTokenStore {
	return sqlite.NewFactory().NewRefreshTokenStore(database)
}
