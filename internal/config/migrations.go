package config

import (
	"context"
	"fmt"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'admin',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'admin',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(64) NOT NULL DEFAULT 'admin',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var mssqlMigrations = []string{
	`IF OBJECT_ID(N'admins', N'U') IS NULL
	CREATE TABLE admins (
		id NVARCHAR(36) PRIMARY KEY,
		username NVARCHAR(191) COLLATE Latin1_General_CS_AS NOT NULL UNIQUE,
		password_hash NVARCHAR(255) NOT NULL,
		name NVARCHAR(255) NOT NULL DEFAULT '',
		role NVARCHAR(64) NOT NULL DEFAULT 'admin',
		is_active BIT NOT NULL DEFAULT 1,
		created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
		updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range s.dialect.Migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
