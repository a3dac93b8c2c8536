package config

import (
	"fmt"
	"sort"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Dialect describes how the store talks to one database engine: which
// database/sql driver to open, how to normalize its DSN and which DDL creates
// the admin schema.
type Dialect struct {
	// Name is the user-facing identifier (database.driver in portal.yaml).
	Name string
	// DriverName is the name registered with database/sql.
	DriverName string
	// NormalizeDSN rewrites a user-supplied DSN into the form the store
	// needs. Nil means the DSN is used as-is.
	NormalizeDSN func(dsn string) (string, error)
	// Migrations are executed in order on every open. Each statement must be
	// idempotent.
	Migrations []string
	// MaxOpenConns caps the pool. Zero leaves database/sql's default.
	MaxOpenConns int
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name:         "sqlite",
		DriverName:   "sqlite",
		Migrations:   sqliteMigrations,
		MaxOpenConns: 1, // SQLite doesn't support concurrent writes
	},
	"postgres": {
		Name:       "postgres",
		DriverName: "pgx",
		Migrations: postgresMigrations,
	},
	"mysql": {
		Name:         "mysql",
		DriverName:   "mysql",
		NormalizeDSN: normalizeMySQLDSN,
		Migrations:   mysqlMigrations,
	},
	"mssql": {
		Name:       "mssql",
		DriverName: "sqlserver",
		Migrations: mssqlMigrations,
	},
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database driver: %s (available: %v)", name, AvailableDrivers())
	}
	return d, nil
}

// AvailableDrivers returns the sorted names of every supported dialect.
func AvailableDrivers() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// normalizeMySQLDSN forces parseTime so DATETIME columns scan into time.Time.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
