package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Required for file-based migrations
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationFiles holds the schema for each engine / Contient le schéma de chaque moteur
//
//go:embed migrations
var migrationFiles embed.FS

// InitialSchema returns the embedded up migration for dbType / Retourne la migration initiale embarquée
func InitialSchema(dbType DatabaseType) (string, error) {
	b, err := fs.ReadFile(migrationFiles, "migrations/"+dbType.String()+"/000001_init.up.sql")
	if err != nil {
		return "", fmt.Errorf("no embedded schema for %s: %w", dbType, err)
	}
	return string(b), nil
}

// NewMigrate builds a migrate instance; path overrides the embedded files / Construit une instance migrate, path remplace les fichiers embarqués
func NewMigrate(database *sql.DB, dbType DatabaseType, path string) (*migrate.Migrate, error) {
	driver, err := NewMigrationDriver(database, dbType)
	if err != nil {
		return nil, err
	}

	if path != "" {
		return migrate.NewWithDatabaseInstance("file://"+path, dbType.String(), driver)
	}

	var src source.Driver
	src, err = iofs.New(migrationFiles, "migrations/"+dbType.String())
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, dbType.String(), driver)
}

// MigrateUp applies all pending migrations / Applique les migrations en attente
func MigrateUp(database *sql.DB, dbType DatabaseType, path string) error {
	m, err := NewMigrate(database, dbType, path)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
