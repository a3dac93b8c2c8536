package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bpbdbogor/portal/internal/model"
)

// DatabaseConfig selects and locates the admin database.
type DatabaseConfig struct {
	// Driver is one of AvailableDrivers(). Empty means "sqlite".
	Driver string
	// DSN is passed to the driver. For sqlite an empty DSN places portal.db
	// inside DataDir, or an in-memory database when DataDir is empty too.
	DSN     string
	DataDir string
}

// Store persists admin accounts in a SQL database.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewStore creates an SQLite-backed store. Pass empty string for in-memory.
func NewStore(dataDir string) (*Store, error) {
	return Open(context.Background(), DatabaseConfig{Driver: "sqlite", DataDir: dataDir})
}

// Open connects to the configured database and applies the schema
// migrations.
func Open(ctx context.Context, cfg DatabaseConfig) (*Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := resolveDSN(dialect, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open admin database: %w", err)
	}
	if dialect.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dialect.MaxOpenConns)
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate admin database: %w", err)
	}
	return s, nil
}

func resolveDSN(d Dialect, cfg DatabaseConfig) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		if d.Name != "sqlite" {
			return "", fmt.Errorf("database.dsn is required for driver %s", d.Name)
		}
		if cfg.DataDir == "" {
			return ":memory:?_journal_mode=WAL", nil
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return "", fmt.Errorf("create data dir: %w", err)
		}
		return filepath.Join(cfg.DataDir, "portal.db") + "?_journal_mode=WAL&_busy_timeout=5000", nil
	}
	if d.NormalizeDSN != nil {
		return d.NormalizeDSN(dsn)
	}
	return dsn, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the dialect name the store was opened with.
func (s *Store) Driver() string {
	return s.dialect.Name
}

// ---------------------------------------------------------------------------
// Admin CRUD
// ---------------------------------------------------------------------------

const adminColumns = "id, username, password_hash, name, role, is_active, created_at, updated_at"

// CreateAdmin inserts a new admin account. ID, Role, CreatedAt and UpdatedAt
// are filled in when empty.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.Must(uuid.NewV7()).String()
	}
	if admin.Role == "" {
		admin.Role = model.DefaultRole
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins
		(id, username, password_hash, name, role, is_active, created_at, updated_at)
		VALUES
		(:id, :username, :password_hash, :name, :role, :is_active, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// FindAdminByUsername returns the admin with exactly this username, or
// ErrNotFound. The comparison is case-sensitive on every dialect.
func (s *Store) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT " + adminColumns + " FROM admins WHERE username = ?")
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	// Collations on mysql/mssql may fold case.
	if admin.Username != username {
		return nil, ErrNotFound
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT "+adminColumns+" FROM admins ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// EnsureAdmin creates admin unless an account with the same username already
// exists. It reports whether a record was created.
func (s *Store) EnsureAdmin(ctx context.Context, admin *model.Admin) (bool, error) {
	_, err := s.FindAdminByUsername(ctx, admin.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		// Lost a race with a concurrent provisioner.
		if errors.Is(err, ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isUniqueViolation recognizes duplicate-key errors across the supported
// drivers.
func isUniqueViolation(err error) bool {
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry") ||
		strings.Contains(lower, "violation of unique")
}
