package db

import "strings"

// DatabaseType represents supported database types
type DatabaseType string

const (
	SQLite     DatabaseType = "sqlite"
	MySQL      DatabaseType = "mysql"
	PostgreSQL DatabaseType = "postgres"
)

// String returns string representation
func (dt DatabaseType) String() string {
	return string(dt)
}

// IsValid checks if database type is valid
func (dt DatabaseType) IsValid() bool {
	switch dt {
	case SQLite, MySQL, PostgreSQL:
		return true
	default:
		return false
	}
}

// ParseDatabaseType normalizes config names, SQLite when empty / Normalise les noms de config, SQLite si vide
func ParseDatabaseType(name string) DatabaseType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite
	case "postgres", "postgresql":
		return PostgreSQL
	case "mysql":
		return MySQL
	default:
		return DatabaseType(name)
	}
}
