package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
)

// MigrationsTable records applied schema versions / Enregistre les versions de schéma appliquées
const MigrationsTable = "qna_schema_migrations"

// DatabaseConfig holds database connection config / Contient la config de connexion BD
type DatabaseConfig struct {
	Type            DatabaseType
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// engine describes one supported server / Décrit un moteur supporté
type engine struct {
	driver   string
	dsn      func(string) (string, error)
	session  []string
	migrator func(*sql.DB) (database.Driver, error)
}

var engines = map[DatabaseType]engine{
	SQLite: {
		driver: "sqlite",
		dsn:    sqliteDSN,
		migrator: func(conn *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: MigrationsTable})
		},
	},
	PostgreSQL: {
		driver:  "postgres",
		dsn:     func(dsn string) (string, error) { return dsn, nil },
		session: []string{"SET TIME ZONE 'UTC'"},
		migrator: func(conn *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(conn, &postgres.Config{MigrationsTable: MigrationsTable})
		},
	},
	MySQL: {
		driver:  "mysql",
		dsn:     mysqlDSN,
		session: []string{"SET SESSION sql_mode='TRADITIONAL,NO_AUTO_VALUE_ON_ZERO'"},
		migrator: func(conn *sql.DB) (database.Driver, error) {
			return mysql.WithInstance(conn, &mysql.Config{MigrationsTable: MigrationsTable})
		},
	},
}

func lookup(dbType DatabaseType) (engine, error) {
	e, ok := engines[dbType]
	if !ok {
		return engine{}, fmt.Errorf("unsupported database type: %s", dbType)
	}
	return e, nil
}

// Open connects, tunes the pool and pings / Connecte, règle le pool et vérifie la connexion
func Open(conf DatabaseConfig) (*sql.DB, error) {
	e, err := lookup(conf.Type)
	if err != nil {
		return nil, err
	}
	dsn, err := e.dsn(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid %s dsn: %w", conf.Type, err)
	}

	conn, err := sql.Open(e.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", conf.Type, err)
	}
	configurePool(conn, conf)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", conf.Type, err)
	}
	for _, stmt := range e.session {
		if _, err := conn.Exec(stmt); err != nil {
			slog.Warn("session setup failed", "type", conf.Type, "stmt", stmt, "err", err)
		}
	}

	slog.Info("database connected", "type", conf.Type)
	return conn, nil
}

func configurePool(conn *sql.DB, conf DatabaseConfig) {
	maxOpen, maxIdle := conf.MaxOpenConns, conf.MaxIdleConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	if maxIdle == 0 {
		maxIdle = 5
	}

	// Every connection to a private :memory: database sees its own schema
	if conf.Type == SQLite && isMemoryDSN(conf.DSN) {
		maxOpen, maxIdle = 1, 1
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	if conf.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}
}

// isMemoryDSN reports whether an SQLite DSN points to a private in-memory database / Indique si le DSN SQLite est en mémoire
func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, ":memory:?") || strings.Contains(dsn, "mode=memory")
}

// sqlitePragmas apply to every pooled connection / S'appliquent à chaque connexion du pool
var sqlitePragmas = []struct{ name, value string }{
	{"foreign_keys", "1"},
	{"busy_timeout", "5000"},
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
}

// sqliteDSN adds the pragmas a DSN does not set itself / Ajoute les pragmas absents du DSN
func sqliteDSN(dsn string) (string, error) {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", err
	}

	present := strings.Join(q["_pragma"], ",")
	for _, p := range sqlitePragmas {
		if p.name == "journal_mode" && isMemoryDSN(dsn) {
			continue
		}
		if !strings.Contains(present, p.name+"(") {
			q.Add("_pragma", p.name+"("+p.value+")")
		}
	}
	return base + "?" + q.Encode(), nil
}

// mysqlDSN forces parseTime and UTC so DATETIME scans into time.Time / Force parseTime et UTC
func mysqlDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// NewMigrationDriver wraps conn for golang-migrate / Enveloppe conn pour golang-migrate
func NewMigrationDriver(conn *sql.DB, dbType DatabaseType) (database.Driver, error) {
	e, err := lookup(dbType)
	if err != nil {
		return nil, err
	}
	driver, err := e.migrator(conn)
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", dbType, err)
	}
	return driver, nil
}
